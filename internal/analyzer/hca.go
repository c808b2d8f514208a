package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

// firmwarePolicyEntry is one device-type entry in the external firmware
// policy JSON (§4.4 Family D): allowed PSIDs plus a minimum version.
type firmwarePolicyEntry struct {
	AllowedPSIDs  []string `json:"allowed_psids"`
	MinFWVersion  string   `json:"min_fw_version"`
}

// FirmwarePolicy is keyed by device type ("HCA", "Switch", ...).
type FirmwarePolicy map[string]firmwarePolicyEntry

// LoadFirmwarePolicy reads the policy JSON at path. A missing path
// returns an empty (permissive) policy rather than an error.
func LoadFirmwarePolicy(path string) FirmwarePolicy {
	if path == "" {
		return FirmwarePolicy{}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return FirmwarePolicy{}
	}
	var p FirmwarePolicy
	if err := json.Unmarshal(b, &p); err != nil {
		return FirmwarePolicy{}
	}
	return p
}

// HCA implements Family D (§4.4): host inventory, firmware compliance.
type HCA struct {
	Policy FirmwarePolicy
}

func (h HCA) Name() string { return "hca" }

func (h HCA) Analyze(inv *dataset.Inventory) Result {
	nodes := inv.ReadTable("NODES_INFO")
	if nodes.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	topo := inv.Topology()
	policy := h.Policy
	if policy == nil {
		policy = FirmwarePolicy{}
	}

	var rows []scorer.Row
	var frame anomaly.Frame

	for _, r := range nodes.Rows {
		guid := r.GetString("NodeGUID")
		row := annotateRow(topo, guid, 0)

		major, _ := r.GetInt("FWInfo_Extended_Major")
		minor, _ := r.GetInt("FWInfo_Extended_Minor")
		subMinor, _ := r.GetInt("FWInfo_Extended_SubMinor")
		fwVersion := fmt.Sprintf("%d.%d.%d", major, minor, subMinor)
		row["FWVersion"] = fwVersion

		uptimeHex, _ := r.GetInt("HWInfo_UpTime")
		row["UptimeSeconds"] = uptimeHex

		psid := strings.TrimSpace(r.GetString("PSID"))
		row["PSID"] = psid
		deviceType := r.GetString("DeviceType")
		if deviceType == "" {
			deviceType = "HCA"
		}

		var anomalies []string
		var weights []float64

		if entry, ok := policy[deviceType]; ok {
			if len(entry.AllowedPSIDs) > 0 && !containsString(entry.AllowedPSIDs, psid) {
				frame.Add(guid, 0, anomaly.PSIDUnsupported, 1.0)
				anomalies = append(anomalies, anomaly.Display(anomaly.PSIDUnsupported))
				weights = append(weights, 1.0)
			}
			if entry.MinFWVersion != "" {
				if dist := versionDistance(fwVersion, entry.MinFWVersion); dist > 0 {
					w := dist
					if w < 0.1 {
						w = 0.1
					}
					frame.Add(guid, 0, anomaly.FWOutdated, w)
					anomalies = append(anomalies, anomaly.Display(anomaly.FWOutdated))
					weights = append(weights, w)
				}
			}
		}

		if len(anomalies) > 0 {
			row["IBH Anomaly"] = joinStrings(anomalies)
			row["IBH Anomaly Weight"] = sumFloats(weights)
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: frame, Summary: summaryCount(rows, len(frame.Rows))}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// versionDistance returns a positive "distance" when actual is below min
// (the shortfall in the first component that differs, plus 2 for a major,
// 1 for a minor and 0 for a patch component), 0 when actual meets or
// exceeds min. Used to weight IBH_FW_OUTDATED (§4.4: "weight = version distance,
// min 0.1").
func versionDistance(actual, min string) float64 {
	a := splitVersion(actual)
	m := splitVersion(min)
	for i := 0; i < 3; i++ {
		if a[i] > m[i] {
			return 0
		}
		if a[i] < m[i] {
			return float64(m[i]-a[i]) + float64(2-i)
		}
	}
	return 0
}

func splitVersion(v string) [3]int64 {
	parts := strings.SplitN(v, ".", 3)
	var out [3]int64
	for i := 0; i < 3 && i < len(parts); i++ {
		n, _ := model.ParseIntLoose(parts[i])
		out[i] = n
	}
	return out
}
