// Package netdumpext parses the companion `*.net_dump_ext` file: one
// colon-delimited line per port, each beginning "CA:" or "SW:" (§6).
package netdumpext

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// Row is one parsed net_dump_ext line.
type Row struct {
	NodeType          string // "CA" or "SW"
	PortNum           int
	NodeGUID          string
	AttachedTo        string
	RawBER            float64
	EffectiveBER      float64
	SymbolBER         float64
	SymbolErrorCount  float64
	EffectiveErrCount float64
	NodeName          string
}

// field offsets are 1-indexed in the spec; this is their 0-indexed
// equivalent into the colon-split line.
const (
	idxPortNum     = 3 - 1
	idxNodeGUID    = 4 - 1
	idxAttachedTo  = 10 - 1
	idxRawBER      = 13 - 1
	idxEffBER      = 14 - 1
	idxSymBER      = 15 - 1
	idxSymErrCount = 16 - 1
	idxEffErrCount = 17 - 1
	idxNodeName    = 18 - 1
)

// Parse reads path and returns every well-formed CA:/SW: line. Malformed
// or short lines are skipped, matching the reader's degrade-gracefully
// policy for optional companion files (§4.1/§4.4).
func Parse(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []Row
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "CA:") && !strings.HasPrefix(line, "SW:") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) <= idxNodeName {
			continue
		}
		rows = append(rows, Row{
			NodeType:          strings.TrimSpace(fields[0]),
			PortNum:           atoi(fields[idxPortNum]),
			NodeGUID:          strings.TrimSpace(fields[idxNodeGUID]),
			AttachedTo:        strings.TrimSpace(fields[idxAttachedTo]),
			RawBER:            atof(fields[idxRawBER]),
			EffectiveBER:      atof(fields[idxEffBER]),
			SymbolBER:         atof(fields[idxSymBER]),
			SymbolErrorCount:  atof(fields[idxSymErrCount]),
			EffectiveErrCount: atof(fields[idxEffErrCount]),
			NodeName:          unquote(fields[idxNodeName]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func atoi(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func atof(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, `"`)
}
