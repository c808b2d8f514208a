package analyzer

import (
	"math"
	"strconv"
	"strings"

	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

// Cable implements Family B (§4.4): cable/optics health from CABLE_INFO
// joined with PORTS for active link speed.
type Cable struct{}

func (Cable) Name() string { return "cable" }

func (Cable) Analyze(inv *dataset.Inventory) Result {
	cables := inv.ReadTable("CABLE_INFO")
	if cables.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	ports := inv.ReadTable("PORTS")
	portsByKey := indexPortsByKey(ports)
	topo := inv.Topology()

	var rows []scorer.Row
	var frame anomaly.Frame

	for _, r := range cables.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		row := annotateRow(topo, guid, port)

		var anomalies []string
		var weights []float64
		add := func(kind anomaly.Kind, w float64) {
			frame.Add(guid, port, kind, w)
			anomalies = append(anomalies, anomaly.Display(kind))
			weights = append(weights, w)
		}

		temp, tempOK := parseTempString(r.GetString("Temperature (c)"))
		if tempOK {
			row["Temperature (c)"] = temp
			if temp >= 70 {
				add(anomaly.OpticalTempHigh, math.Max(0.1, temp-70))
			}
		}

		for _, alarm := range []struct {
			col  string
			kind anomaly.Kind
		}{
			{"TxBiasAlarm", anomaly.OpticalTxBiasAlarm},
			{"TxBiasWarning", anomaly.OpticalTxBiasAlarm},
			{"TxPowerAlarm", anomaly.OpticalTxPowerAlarm},
			{"TxPowerWarning", anomaly.OpticalTxPowerAlarm},
			{"RxPowerAlarm", anomaly.OpticalRxPowerAlarm},
			{"RxPowerWarning", anomaly.OpticalRxPowerAlarm},
			{"VoltageAlarm", anomaly.OpticalVoltageAlarm},
			{"VoltageWarning", anomaly.OpticalVoltageAlarm},
		} {
			if v, ok := firstTokenInt(r.GetString(alarm.col)); ok && v != 0 {
				add(alarm.kind, 1.0)
			}
		}

		supportedSpeed := r.GetString("SupportedSpeed")
		techClass := strings.ToLower(r.GetString("CableTechnology"))
		lengthSM, _ := r.GetFloat("LengthSMFiber")
		lengthCopper, _ := r.GetFloat("LengthCopperOrActive")

		mismatch := "OK"
		switch {
		case strings.Contains(techClass, "fiber") && strings.Contains(supportedSpeed, "HDR") && lengthSM > 1000:
			mismatch = "Cable Mismatch"
			add(anomaly.CableMismatch, 1.0)
		case strings.Contains(techClass, "copper") && strings.Contains(supportedSpeed, "HDR") && lengthCopper > 5:
			mismatch = "Cable Mismatch"
			add(anomaly.CableMismatch, 1.0)
		case strings.Contains(techClass, "fiber") && strings.Contains(supportedSpeed, "FDR") && lengthSM > 1000:
			mismatch = "Cable Mismatch"
			add(anomaly.CableMismatch, 1.0)
		}

		if p, ok := portsByKey[model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}]; ok {
			actSpeedMask, _ := p.GetInt("LinkSpeedActive")
			actLabel, actPrio := decodeSpeed(actSpeedMask)
			row["PortActiveSpeed"] = actLabel
			_, cableSpeedPrio := decodeSpeed(parseCableSpeedMask(supportedSpeed))
			if cableSpeedPrio >= 0 && actPrio >= 0 && cableSpeedPrio < actPrio {
				mismatch = "Cable Mismatch"
				add(anomaly.CableMismatch, 1.0)
			}
		}
		row["CableComplianceStatus"] = mismatch

		if len(anomalies) > 0 {
			row["IBH Anomaly"] = joinStrings(anomalies)
			row["IBH Anomaly Weight"] = sumFloats(weights)
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: frame, Summary: summaryCount(rows, len(frame.Rows))}
}

// parseTempString tolerates "75C", "75", and NA tokens (§4.4 Family B).
func parseTempString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "C"), "c")
	return model.ParseFloatLoose(s)
}

// firstTokenInt parses a field's leading whitespace-delimited token as an
// int, or as 0x-hex, per §4.4 Family B's alarm/warning field rule.
func firstTokenInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	tok := strings.Fields(s)
	if len(tok) == 0 {
		return 0, false
	}
	return model.ParseIntLoose(tok[0])
}

func parseCableSpeedMask(s string) int64 {
	if v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64); err == nil {
		return v
	}
	switch {
	case strings.Contains(s, "NDR"), strings.Contains(s, "HDR"):
		return 0x800
	case strings.Contains(s, "EDR"):
		return 0x400
	case strings.Contains(s, "FDR"):
		return 0x200
	case strings.Contains(s, "QDR"):
		return 0x100
	case strings.Contains(s, "DDR"):
		return 0x080
	case strings.Contains(s, "SDR"):
		return 0x040
	default:
		return 0
	}
}
