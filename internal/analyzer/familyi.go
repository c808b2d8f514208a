package analyzer

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/scorer"
	"github.com/ftahirops/ibhealth/internal/topology"
)

// familyIAnalyzer is the Family I analyzer shape (§4.4, §6): one analyzer
// per declarative table name, each with its own derived-field and summary
// logic (mirroring the teacher pack's per-domain Python services) rather
// than a bare column passthrough.
type familyIAnalyzer struct {
	name  string
	table string
	run   func(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result
}

func (f *familyIAnalyzer) Name() string { return f.name }

func (f *familyIAnalyzer) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable(f.table)
	if frame.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	return f.run(inv, frame, inv.Topology())
}

// BuildFamilyI builds the 21 declarative Family I analyzers (§4.4, §6 name
// list), each grounded on its corresponding original per-domain service.
func BuildFamilyI() []Analyzer {
	defs := []struct {
		name  string
		table string
		run   func(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result
	}{
		{"switch", "SWITCHES", switchAnalyze},
		{"qos", "VL_ARBITRATION_TABLE", qosAnalyze},
		{"sm_info", "SM_INFO", smInfoAnalyze},
		{"port_hierarchy", "PORT_HIERARCHY", portHierarchyAnalyze},
		{"pm_delta", "PM_DELTA", pmDeltaAnalyze},
		{"vports", "VPORTS", vportsAnalyze},
		{"pkey", "PKEY_INFO", pkeyAnalyze},
		{"system_info", "SYSTEM_INFO", systemInfoAnalyze},
		{"extended_port_info", "EXTENDED_PORT_INFO", extendedPortInfoAnalyze},
		{"ar_info", "AR_INFO", arInfoAnalyze},
		{"sharp", "SHARP_AN_INFO", sharpAnalyze},
		{"fec_mode", "FEC_MODE", fecModeAnalyze},
		{"phy_diagnostics", "PHY_DB1", phyDiagnosticsAnalyze},
		{"neighbors", "LINKS", neighborsAnalyze},
		{"buffer_histogram", "BUFFER_HISTOGRAM", bufferHistogramAnalyze},
		{"extended_node_info", "EXTENDED_NODE_INFO", extendedNodeInfoAnalyze},
		{"extended_switch_info", "EXTENDED_SWITCH_INFO", extendedSwitchInfoAnalyze},
		{"routing_config", "ROUTING_CONFIG_HBF", routingConfigAnalyze},
		{"pci_performance", "P_DB2", pciPerformanceAnalyze},
		{"per_lane_performance", "P_DB8", perLanePerformanceAnalyze},
		{"n2n_security", "N2N_KEY_INFO", n2nSecurityAnalyze},
	}
	out := make([]Analyzer, 0, len(defs))
	for _, d := range defs {
		d := d
		out = append(out, &familyIAnalyzer{name: d.name, table: d.table, run: d.run})
	}
	return out
}

// --- shared small helpers -------------------------------------------------

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func firstString(r model.Row, cols ...string) string {
	for _, c := range cols {
		if v := r.GetString(c); v != "" {
			return v
		}
	}
	return ""
}

func firstInt(r model.Row, cols ...string) int64 {
	for _, c := range cols {
		if v, ok := r.GetInt(c); ok {
			return v
		}
	}
	return 0
}

func firstFloat(r model.Row, cols ...string) float64 {
	for _, c := range cols {
		if v, ok := r.GetFloat(c); ok {
			return v
		}
	}
	return 0
}

func firstBool(r model.Row, cols ...string) bool {
	return firstInt(r, cols...) != 0
}

func portFromRowMulti(r model.Row, cols ...string) int {
	for _, c := range cols {
		if f, ok := r.GetFloat(c); ok {
			return int(f)
		}
	}
	return 0
}

func cleanQuoted(s string) string {
	return strings.Trim(s, `"`)
}

// severityRank orders rows the way every original service sorts its
// records: critical, then warning, then info/normal.
func severityRank(s string) int {
	switch s {
	case "critical":
		return 0
	case "warning":
		return 1
	default:
		return 2
	}
}

func sortBySeverity(rows []scorer.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		si, _ := rows[i]["Severity"].(string)
		sj, _ := rows[j]["Severity"].(string)
		return severityRank(si) < severityRank(sj)
	})
}

// indexRowsByGUID builds a NodeGUID -> Row lookup for a join side-table,
// trying each candidate column name in order.
func indexRowsByGUID(frame model.Frame, cols ...string) map[string]model.Row {
	out := make(map[string]model.Row, len(frame.Rows))
	for _, r := range frame.Rows {
		guid := model.NormalizeGUID(firstString(r, cols...))
		if guid == "" {
			continue
		}
		out[guid] = r
	}
	return out
}

func joinIssues(issues []string) string { return strings.Join(issues, "; ") }

// --- switch (SWITCHES + AR_INFO + SYSTEM_INFO), grounded on switch_service.py ---

func switchAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	sysInfo := indexRowsByGUID(inv.ReadTable("SYSTEM_INFO"), "NodeGuid", "NodeGUID")
	arInfo := indexRowsByGUID(inv.ReadTable("AR_INFO"), "NodeGUID", "NodeGuid")

	rows := make([]scorer.Row, 0, len(frame.Rows))
	arEnabled, frEnabled, hbfEnabled := 0, 0, 0
	products := map[string]int{}

	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		row := annotateRow(topo, guid, 0)
		key := model.NormalizeGUID(guid)

		if sys, ok := sysInfo[key]; ok {
			row["ProductName"] = cleanQuoted(sys.GetString("ProductName"))
			row["PartNumber"] = sys.GetString("PartNumber")
			row["SerialNumber"] = sys.GetString("SerialNumber")
			row["Revision"] = sys.GetString("Revision")
		}

		var ar model.Row
		var hasAR bool
		if a, ok := arInfo[key]; ok {
			ar = a
			hasAR = true
		}
		areEnabled := hasAR && firstBool(ar, "e", "rn_xmit_enabled")
		frEn := hasAR && firstBool(ar, "fr_enabled")
		hbfSup := hasAR && firstBool(ar, "is_hbf_supported")
		hbfEn := hasAR && firstBool(ar, "by_sl_hbf_en")

		row["LinearFDBCap"] = firstInt(r, "LinearFDBCap")
		row["LinearFDBTop"] = firstInt(r, "LinearFDBTop")
		row["MCastFDBCap"] = firstInt(r, "MCastFDBCap")
		row["LifeTimeValue"] = firstInt(r, "LifeTimeValue")
		row["AREnabled"] = areEnabled
		row["FREnabled"] = frEn
		row["HBFSupported"] = hbfSup
		row["HBFEnabled"] = hbfEn
		if hasAR {
			row["ARGroupCap"] = firstInt(ar, "group_cap")
			row["ARGroupTop"] = firstInt(ar, "group_top")
		}

		if areEnabled {
			arEnabled++
		}
		if frEn {
			frEnabled++
		}
		if hbfEn {
			hbfEnabled++
		}
		pn, _ := row["ProductName"].(string)
		if pn == "" {
			pn = "Unknown"
		}
		products[pn]++

		rows = append(rows, row)
	}

	summary := map[string]any{
		"total_switches":    len(rows),
		"ar_enabled_count":  arEnabled,
		"fr_enabled_count":  frEnabled,
		"hbf_enabled_count": hbfEnabled,
		"product_types":     products,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- qos (VL_ARBITRATION_TABLE), grounded on qos_service.py ---

type qosAgg struct {
	vls                map[int64]bool
	totalWeight        int64
	highWeight         int64
	lowWeight          int64
	weights            []int64
	guid               string
	port               int
}

func qosAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	byPort := map[model.PortKey]*qosAgg{}
	var order []model.PortKey

	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		key := model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}
		agg, ok := byPort[key]
		if !ok {
			agg = &qosAgg{vls: map[int64]bool{}, guid: guid, port: port}
			byPort[key] = agg
			order = append(order, key)
		}
		priority := strings.ToLower(r.GetString("Priority"))
		vl := firstInt(r, "VL")
		weight := firstInt(r, "Weight")

		agg.vls[vl] = true
		agg.totalWeight += weight
		agg.weights = append(agg.weights, weight)
		if priority == "high" {
			agg.highWeight += weight
		} else {
			agg.lowWeight += weight
		}
	}

	rows := make([]scorer.Row, 0, len(order))
	singleVL, highDominant, imbalanced := 0, 0, 0

	for _, key := range order {
		agg := byPort[key]
		row := annotateRow(topo, agg.guid, agg.port)

		vlsUsed := len(agg.vls)
		highPct := 0.0
		if agg.totalWeight > 0 {
			highPct = float64(agg.highWeight) / float64(agg.totalWeight) * 100
		}
		var avg float64
		if len(agg.weights) > 0 {
			var sum int64
			for _, w := range agg.weights {
				sum += w
			}
			avg = float64(sum) / float64(len(agg.weights))
		}
		var variance float64
		for _, w := range agg.weights {
			d := float64(w) - avg
			variance += d * d
		}
		if len(agg.weights) > 0 {
			variance /= float64(len(agg.weights))
		}

		severity := "normal"
		var issues []string
		if vlsUsed < 2 {
			severity = "info"
			issues = append(issues, "Single VL in use")
			singleVL++
		}
		if highPct > 80 {
			if severity == "normal" {
				severity = "warning"
			}
			issues = append(issues, "High priority dominates")
			highDominant++
		}
		if variance > 10000 {
			if severity == "normal" {
				severity = "warning"
			}
			issues = append(issues, "VL weight imbalance detected")
			imbalanced++
		}

		row["VLsUsed"] = vlsUsed
		row["TotalWeight"] = agg.totalWeight
		row["HighPriorityWeight"] = agg.highWeight
		row["LowPriorityWeight"] = agg.lowWeight
		row["HighPriorityPct"] = round1(highPct)
		row["AvgWeight"] = round1(avg)
		row["WeightVariance"] = round1(variance)
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)
		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_ports":               len(rows),
		"single_vl_ports":           singleVL,
		"high_priority_dominant":    highDominant,
		"weight_imbalanced_ports":   imbalanced,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- sm_info (SM_INFO) ---

var smStateNames = []string{"Not Active", "Discovering", "Standby", "Master", "Unknown"}

func smInfoAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	masters, standbys := 0, 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "NodeGUID")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		state := firstInt(r, "SMState")
		row["SMState"] = decodeEnum(smStateNames, state)
		row["SMStateCode"] = state
		row["Priority"] = firstInt(r, "Priority")
		row["ActCount"] = firstInt(r, "ActCount")

		isMaster := state == 3
		isStandby := state == 2
		row["IsMaster"] = isMaster
		if isMaster {
			masters++
		}
		if isStandby {
			standbys++
		}
		rows = append(rows, row)
	}

	severity := "normal"
	if masters == 0 {
		severity = "critical"
	} else if masters > 1 {
		severity = "warning"
	}

	summary := map[string]any{
		"total_sm_instances": len(rows),
		"masters":            masters,
		"standbys":           standbys,
		"severity":           severity,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- port_hierarchy (PORT_HIERARCHY) ---

func portHierarchyAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	planes := map[int64]int{}

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "NodeGUID")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		plane := firstInt(r, "PlaneNum")
		row["PlaneNum"] = plane
		row["Tier"] = firstInt(r, "Tier")
		row["IsSMP"] = firstBool(r, "IsSMP")
		row["IsEnhanced"] = firstBool(r, "IsEnhanced")
		planes[plane]++
		rows = append(rows, row)
	}

	summary := map[string]any{
		"total_ports": len(rows),
		"plane_count": len(planes),
	}
	return Result{Rows: rows, Summary: summary}
}

// --- pm_delta (PM_DELTA declarative view), grounded on pm_delta_service.py ---

const (
	fecUncorrectableThreshold = 10
	fecCorrectableWarning     = 100000
)

func bytesToGB(v float64) float64 { return v / (1024 * 1024 * 1024) }

func pmDeltaAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	var anomalyCount int

	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRowMulti(r, "PortNumber", "PortNum")
		row := annotateRow(topo, guid, port)

		xmitGB := bytesToGB(firstFloat(r, "PortXmitDataExtended"))
		rcvGB := bytesToGB(firstFloat(r, "PortRcvDataExtended"))
		row["PortXmitDataGB"] = round1(xmitGB)
		row["PortRcvDataGB"] = round1(rcvGB)
		row["PortXmitPktsExtended"] = firstFloat(r, "PortXmitPktsExtended")
		row["PortRcvPktsExtended"] = firstFloat(r, "PortRcvPktsExtended")

		fecCorrected := firstFloat(r, "PortFECCorrectedSymbolCounter")
		fecCorrectableBlocks := firstFloat(r, "PortFECCorrectableBlockCounter")
		fecUncorrectable := firstFloat(r, "PortFECUncorrectableBlockCounter")
		row["FECCorrectedSymbols"] = fecCorrected
		row["FECCorrectableBlocks"] = fecCorrectableBlocks
		row["FECUncorrectableBlocks"] = fecUncorrectable
		row["RcvSwitchRelayErrorsExt"] = firstFloat(r, "PortRcvSwitchRelayErrorsExt")
		row["DLIDMappingErrors"] = firstFloat(r, "PortDLIDMappingErrors")

		severity := "normal"
		var issues []string
		if fecUncorrectable >= fecUncorrectableThreshold {
			severity = "critical"
			issues = append(issues, "FEC uncorrectable blocks above threshold")
			anomalyCount++
		} else if fecCorrected >= fecCorrectableWarning {
			severity = "warning"
			issues = append(issues, "FEC corrected symbols above threshold")
		}
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	return Result{Rows: rows, Summary: summaryCount(rows, anomalyCount)}
}

// --- vports (VPORTS) ---

func vportsAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	byPhysical := map[string]int{}

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "NodeGUID")
		row := annotateRow(topo, guid, 0)

		vnodeGUID := model.NormalizeGUID(r.GetString("VNodeGuid"))
		row["VNodeGUID"] = vnodeGUID
		row["VNodeDesc"] = r.GetString("VNodeDesc")
		row["VPortIndex"] = firstInt(r, "VPortIndex")
		row["VNumberOfPorts"] = firstInt(r, "VNumberOfPorts")

		byPhysical[model.NormalizeGUID(guid)]++
		rows = append(rows, row)
	}

	summary := map[string]any{
		"total_vports":            len(rows),
		"virtualized_physical_nodes": len(byPhysical),
	}
	return Result{Rows: rows, Summary: summary}
}

// --- pkey (PKEY_INFO), grounded on pkey_service.py ---

const defaultPKey = 0x7fff

func pkeyAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	fullCount, limitedCount, defaultCount := 0, 0, 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGUID", "NodeGuid")
		port := portFromRowMulti(r, "LocalPortNum", "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		pkeyRaw := r.GetString("PKey")
		pkeyVal := parsePKey(pkeyRaw)
		row["PKeyValue"] = pkeyVal
		row["PKeyStr"] = model.MustFormatHex(int64(pkeyVal))

		membership := firstInt(r, "Membership")
		membershipType := "Unknown"
		switch membership {
		case 1:
			membershipType = "Full"
			fullCount++
		case 0:
			membershipType = "Limited"
			limitedCount++
		}
		row["MembershipType"] = membershipType

		isDefault := pkeyVal == defaultPKey
		row["IsDefaultPartition"] = isDefault
		if isDefault {
			defaultCount++
		}

		rows = append(rows, row)
	}

	summary := map[string]any{
		"total_entries":    len(rows),
		"full_membership":  fullCount,
		"limited_membership": limitedCount,
		"default_partition": defaultCount,
	}
	return Result{Rows: rows, Summary: summary}
}

func parsePKey(s string) int64 {
	s = strings.TrimSpace(s)
	if v, ok := model.ParseIntLoose(s); ok {
		return v & 0x7fff
	}
	return 0
}

// --- system_info (SYSTEM_INFO), grounded on system_info_service.py ---

func systemInfoAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	products := map[string]int{}

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "NodeGUID")
		row := annotateRow(topo, guid, 0)

		product := cleanQuoted(r.GetString("ProductName"))
		row["ProductName"] = product
		row["PartNumber"] = cleanQuoted(r.GetString("PartNumber"))
		row["SerialNumber"] = cleanQuoted(r.GetString("SerialNumber"))
		row["Revision"] = cleanQuoted(r.GetString("Revision"))

		if product == "" {
			product = "Unknown"
		}
		products[product]++
		rows = append(rows, row)
	}

	runInfo := inv.ReadTable("RUN_INFO")
	summary := map[string]any{
		"total_nodes":   len(rows),
		"product_types": products,
	}
	if !runInfo.Empty() {
		ri := runInfo.Rows[0]
		summary["ibdiagnet_version"] = ri.GetString("IBDIAGNET_Version")
		summary["ibdiag_version"] = ri.GetString("IBDIAG_Version")
		summary["ibdm_version"] = ri.GetString("IBDM_Version")
		summary["ibis_version"] = ri.GetString("IBIS_Version")
		summary["run_date"] = ri.GetString("Date")
		summary["run_args"] = ri.GetString("Args")
	}
	return Result{Rows: rows, Summary: summary}
}

// --- extended_port_info (EXTENDED_PORT_INFO) ---

func extendedPortInfoAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	unhealthy, underutilized, hdrPending := 0, 0, 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "NodeGUID")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		unhealthyReason := firstInt(r, "UnhealthyReason")
		bwUtil := firstFloat(r, "BwUtilization")
		bwUtilEn := firstBool(r, "BwUtilEn")
		minBwUtil := firstFloat(r, "MinBwUtilization")
		hdrSup := firstBool(r, "HDRFECModeSupported")
		hdrEn := firstBool(r, "HDRFECModeEnabled")
		ndrSup := firstBool(r, "NDRFECModeSupported")
		ndrEn := firstBool(r, "NDRFECModeEnabled")

		row["UnhealthyReason"] = unhealthyReason
		row["BwUtilization"] = bwUtil
		row["BwUtilEn"] = bwUtilEn
		row["MinBwUtilization"] = minBwUtil
		row["RetransMode"] = firstInt(r, "RetransMode")
		row["HDRFECSupported"] = hdrSup
		row["HDRFECEnabled"] = hdrEn
		row["NDRFECSupported"] = ndrSup
		row["NDRFECEnabled"] = ndrEn
		row["LinkSpeedActive"] = firstInt(r, "LinkSpeedActive")
		row["LinkSpeedSupported"] = firstInt(r, "LinkSpeedSupported")

		severity := "normal"
		var issues []string
		if unhealthyReason > 0 {
			severity = "critical"
			issues = append(issues, "Port reports unhealthy")
			unhealthy++
		} else if bwUtilEn && bwUtil < minBwUtil*0.5 {
			severity = "warning"
			issues = append(issues, "Bandwidth utilization below half of minimum")
			underutilized++
		} else if hdrSup && !hdrEn {
			severity = "info"
			issues = append(issues, "HDR FEC supported but not enabled")
			hdrPending++
		}
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_ports":       len(rows),
		"unhealthy_ports":   unhealthy,
		"underutilized_ports": underutilized,
		"hdr_pending_ports": hdrPending,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- ar_info (AR_INFO), grounded on ar_info_service.py ---

func arInfoAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	arSupported, frSupported, frEnabledCount := 0, 0, 0
	hbfSupported, hbfEnabledCount := 0, 0
	pfrnSupported, pfrnEnabledCount := 0, 0

	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		row := annotateRow(topo, guid, 0)

		isARNSup := firstBool(r, "is_arn_sup")
		isFRNSup := firstBool(r, "is_frn_sup")
		isFRSup := firstBool(r, "is_fr_sup")
		frEn := firstBool(r, "fr_enabled")
		rnXmitEn := firstBool(r, "rn_xmit_enabled")
		isHBFSup := firstBool(r, "is_hbf_supported")
		bySLHBFEn := firstBool(r, "by_sl_hbf_en")
		isWHBFSup := firstBool(r, "is_whbf_supported")
		whbfEn := firstBool(r, "whbf_en")
		isPFRNSup := firstBool(r, "is_pfrn_supported")
		pfrnEn := firstBool(r, "pfrn_enabled")

		if isARNSup || isFRNSup {
			arSupported++
		}
		if isFRSup {
			frSupported++
		}
		if frEn {
			frEnabledCount++
		}
		if isHBFSup {
			hbfSupported++
		}
		hbfEn := bySLHBFEn || whbfEn
		if hbfEn {
			hbfEnabledCount++
		}
		if isPFRNSup {
			pfrnSupported++
		}
		if pfrnEn {
			pfrnEnabledCount++
		}

		severity := "normal"
		var issues []string
		if isFRSup && !frEn {
			issues = append(issues, "Fast Recovery supported but disabled")
			severity = "info"
		}
		if isHBFSup && !hbfEn {
			issues = append(issues, "HBF supported but disabled")
			if severity == "normal" {
				severity = "info"
			}
		}
		if isPFRNSup && !pfrnEn {
			issues = append(issues, "PFRN supported but disabled")
			if severity == "normal" {
				severity = "info"
			}
		}

		row["ARNSupported"] = isARNSup
		row["FRNSupported"] = isFRNSup
		row["FRSupported"] = isFRSup
		row["FREnabled"] = frEn
		row["RNXmitEnabled"] = rnXmitEn
		row["HBFSupported"] = isHBFSup
		row["HBFEnabled"] = hbfEn
		row["WHBFSupported"] = isWHBFSup
		row["WHBFEnabled"] = whbfEn
		row["PFRNSupported"] = isPFRNSup
		row["PFRNEnabled"] = pfrnEn
		row["GroupCapacity"] = firstInt(r, "group_cap")
		row["GroupTop"] = firstInt(r, "group_top")
		row["SubGroupsActive"] = firstInt(r, "sub_grps_active")
		row["GlobalGroups"] = firstInt(r, "glb_groups")
		row["ARVersion"] = firstInt(r, "ar_version_cap")
		row["RNVersion"] = firstInt(r, "rn_version_cap")
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	fr := frSupported
	if fr < 1 {
		fr = 1
	}
	hbf := hbfSupported
	if hbf < 1 {
		hbf = 1
	}
	summary := map[string]any{
		"total_switches":  len(rows),
		"ar_supported":    arSupported,
		"fr_supported":    frSupported,
		"fr_enabled":      frEnabledCount,
		"hbf_supported":   hbfSupported,
		"hbf_enabled":     hbfEnabledCount,
		"pfrn_supported":  pfrnSupported,
		"pfrn_enabled":    pfrnEnabledCount,
		"fr_coverage_pct": round1(float64(frEnabledCount) / float64(fr) * 100),
		"hbf_coverage_pct": round1(float64(hbfEnabledCount) / float64(hbf) * 100),
	}
	return Result{Rows: rows, Summary: summary}
}

// --- sharp (SHARP_AN_INFO), grounded on sharp_service.py ---

func sharpAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	var totalTreeCapacity, totalJobsCapacity, maxQPs int64
	versions := map[int64]bool{}

	for _, r := range frame.Rows {
		guid := firstString(r, "GUID", "NodeGUID")
		row := annotateRow(topo, guid, 0)
		row["LID"] = firstInt(r, "LID")

		treeTableSize := firstInt(r, "tree_table_size")
		numJobs := firstInt(r, "num_of_jobs")
		maxNumQPs := firstInt(r, "max_num_qps")
		sharpVersion := firstInt(r, "sharp_version_supported_bit_mask")

		row["TreeTableSize"] = treeTableSize
		row["TreeRadix"] = firstInt(r, "tree_radix")
		row["GroupTableSize"] = firstInt(r, "group_table_size")
		row["MaxGroupNum"] = firstInt(r, "max_group_num")
		row["NumJobs"] = numJobs
		row["MaxNumQPs"] = maxNumQPs
		row["MaxAggregationPayload"] = firstInt(r, "max_aggregation_payload")
		row["NumSemaphores"] = firstInt(r, "num_semaphores")
		row["LineSize"] = firstInt(r, "line_size")
		row["SharpVersion"] = sharpVersion
		row["ActiveClassVersion"] = firstInt(r, "active_class_version")
		row["DataTypesSupported"] = firstInt(r, "data_types_supported")
		row["MTUSupport"] = firstInt(r, "mtu_support")
		row["Endianness"] = firstInt(r, "endianness")
		row["ReproducibilityDisable"] = firstBool(r, "reproducibility_disable")
		row["ANSatQPInfoSupported"] = firstBool(r, "an_sat_qp_info_supported")

		totalTreeCapacity += treeTableSize
		totalJobsCapacity += numJobs
		if maxNumQPs > maxQPs {
			maxQPs = maxNumQPs
		}
		if sharpVersion != 0 {
			versions[sharpVersion] = true
		}
		rows = append(rows, row)
	}

	summary := map[string]any{
		"total_sharp_nodes":    len(rows),
		"total_tree_capacity":  totalTreeCapacity,
		"total_jobs_capacity":  totalJobsCapacity,
		"max_qps":              maxQPs,
		"sharp_version_count":  len(versions),
	}
	return Result{Rows: rows, Summary: summary}
}

// --- fec_mode (FEC_MODE), grounded on fec_mode_service.py ---

var fecModeNames = map[int64]string{
	0:  "No FEC",
	1:  "FireCode FEC",
	2:  "RS-FEC (528,514)",
	4:  "RS-FEC (544,514)",
	6:  "RS-FEC (544,514) + Interleave",
	14: "RS-FEC Interleaved 272",
}

func fecModeString(code int64) string {
	if s, ok := fecModeNames[code]; ok {
		return s
	}
	return "Unknown (" + strconv.FormatInt(code, 10) + ")"
}

func fecModeAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	distribution := map[string]int{}
	mismatchCount, hdrCapable, ndrCapable := 0, 0, 0

	for _, r := range frame.Rows {
		guid := r.GetString("NodeGuid")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		fecActive := firstInt(r, "FECActv")
		fecActiveStr := fecModeString(fecActive)
		distribution[fecActiveStr]++

		hdrSup := firstInt(r, "HDRFECSup") > 0
		hdrEn := firstInt(r, "HDRFECEn") > 0
		ndrSup := firstInt(r, "NDRFECSup") > 0
		ndrEn := firstInt(r, "NDRFECEn") > 0
		edrSup := firstInt(r, "EDRFECSup") > 0
		edrEn := firstInt(r, "EDRFECEn") > 0

		var issues []string
		severity := "normal"
		if hdrSup && !hdrEn {
			issues = append(issues, "HDR FEC: supported but not enabled")
		}
		if ndrSup && !ndrEn {
			issues = append(issues, "NDR FEC: supported but not enabled")
		}
		if edrSup && !edrEn {
			issues = append(issues, "EDR FEC: supported but not enabled")
		}
		if fecActive == 0 && (hdrSup || ndrSup) {
			issues = append(issues, "No FEC active on high-speed capable port")
			severity = "warning"
			mismatchCount++
		}
		if len(issues) > 0 && severity == "normal" {
			severity = "info"
		}
		if hdrSup {
			hdrCapable++
		}
		if ndrSup {
			ndrCapable++
		}

		row["FECActive"] = fecActiveStr
		row["FECActiveCode"] = fecActive
		row["FDR10Supported"] = firstInt(r, "FDR10FECSup") > 0
		row["FDR10Enabled"] = firstInt(r, "FDR10FECEn") > 0
		row["EDRSupported"] = edrSup
		row["EDREnabled"] = edrEn
		row["EDR20Supported"] = firstInt(r, "EDR20FECSup") > 0
		row["EDR20Enabled"] = firstInt(r, "EDR20FECEn") > 0
		row["HDRSupported"] = hdrSup
		row["HDREnabled"] = hdrEn
		row["NDRSupported"] = ndrSup
		row["NDREnabled"] = ndrEn
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_ports":              len(rows),
		"fec_active_distribution":  distribution,
		"ports_without_fec":        distribution["No FEC"],
		"mismatch_count":           mismatchCount,
		"hdr_capable_ports":        hdrCapable,
		"ndr_capable_ports":        ndrCapable,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- phy_diagnostics (PHY_DB1), grounded on phy_diagnostics_service.py ---

func phyDiagnosticsAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	var fieldCols []string
	for _, c := range frame.Columns {
		if strings.HasPrefix(c, "field") {
			fieldCols = append(fieldCols, c)
			if len(fieldCols) == 20 {
				break
			}
		}
	}

	rows := make([]scorer.Row, 0, len(frame.Rows))
	var totalNonZero int

	for _, r := range frame.Rows {
		guid := r.GetString("NodeGuid")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		portGUID := r.GetString("PortGuid")
		if len(portGUID) > 16 {
			portGUID = portGUID[len(portGUID)-16:]
		}
		row["PortGUID"] = portGUID
		row["Version"] = firstInt(r, "Version")

		nonZero := 0
		for i, col := range fieldCols {
			v := firstInt(r, col)
			row["Field"+strconv.Itoa(i)] = v
			if v != 0 {
				nonZero++
			}
		}
		row["NonZeroFields"] = nonZero
		totalNonZero += nonZero

		rows = append(rows, row)
	}

	summary := map[string]any{
		"total_ports":     len(rows),
		"field_count":     len(fieldCols),
		"total_nonzero":   totalNonZero,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- neighbors (LINKS), grounded on neighbors_service.py ---

func neighborsAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	mismatchedSpeeds, mismatchedWidths := 0, 0

	for _, r := range frame.Rows {
		guid := r.GetString("NodeGuid")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		neighborGUID := model.NormalizeGUID(r.GetString("NeighborNodeGuid"))
		neighborPort := portFromRowMulti(r, "NeighborPortNum")
		localSpeed := firstInt(r, "LinkSpeedActive")
		remoteSpeed := firstInt(r, "NeighborLinkSpeedActive")
		localWidth := firstInt(r, "LinkWidthActive")
		remoteWidth := firstInt(r, "NeighborLinkWidthActive")

		row["NeighborGUID"] = neighborGUID
		row["NeighborPortNum"] = neighborPort
		row["LinkSpeedActive"] = localSpeed
		row["NeighborLinkSpeedActive"] = remoteSpeed
		row["LinkWidthActive"] = localWidth
		row["NeighborLinkWidthActive"] = remoteWidth
		row["MTU"] = firstInt(r, "MTU")
		row["PortType"] = r.GetString("PortType")

		var issues []string
		severity := "normal"
		if localSpeed != 0 && remoteSpeed != 0 && localSpeed != remoteSpeed {
			issues = append(issues, "Speed mismatch")
			severity = "warning"
			mismatchedSpeeds++
		}
		if localWidth != 0 && remoteWidth != 0 && localWidth != remoteWidth {
			issues = append(issues, "Width mismatch")
			severity = "warning"
			mismatchedWidths++
		}
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_links":        len(rows),
		"mismatched_speeds":  mismatchedSpeeds,
		"mismatched_widths":  mismatchedWidths,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- buffer_histogram (BUFFER_HISTOGRAM), grounded on buffer_histogram_service.py ---

const (
	bufferHighUtilizationThreshold     = 80.0
	bufferCriticalUtilizationThreshold = 95.0
)

func bufferHistogramAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	var binCols []string
	for _, c := range frame.Columns {
		if strings.HasPrefix(strings.ToLower(c), "bin") {
			binCols = append(binCols, c)
		}
	}

	rows := make([]scorer.Row, 0, len(frame.Rows))
	criticalCount, highCount := 0, 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "NodeGUID")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		row["VL"] = firstInt(r, "VL")
		row["BufferType"] = firstString(r, "BufferType", "Type")

		var binValues []int64
		var total int64
		for _, c := range binCols {
			v := firstInt(r, c)
			binValues = append(binValues, v)
			total += v
		}
		highPct := 0.0
		if len(binValues) > 0 && total > 0 {
			highThreshold := len(binValues) * 3 / 4
			var highCount2 int64
			for _, v := range binValues[highThreshold:] {
				highCount2 += v
			}
			highPct = float64(highCount2) / float64(total) * 100
		}
		row["HighBinPct"] = round1(highPct)
		row["NumBins"] = len(binCols)

		severity := "normal"
		var issues []string
		if highPct >= bufferCriticalUtilizationThreshold {
			severity = "critical"
			issues = append(issues, "Critical buffer congestion")
			criticalCount++
		} else if highPct >= bufferHighUtilizationThreshold {
			severity = "warning"
			issues = append(issues, "High buffer utilization")
			highCount++
		}
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		si, _ := rows[i]["Severity"].(string)
		sj, _ := rows[j]["Severity"].(string)
		if severityRank(si) != severityRank(sj) {
			return severityRank(si) < severityRank(sj)
		}
		hi, _ := rows[i]["HighBinPct"].(float64)
		hj, _ := rows[j]["HighBinPct"].(float64)
		return hi > hj
	})

	summary := map[string]any{
		"total_histograms":          len(rows),
		"critical_utilization_count": criticalCount,
		"high_utilization_count":     highCount,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- extended_node_info (EXTENDED_NODE_INFO) ---

func extendedNodeInfoAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	noPorts, noLID := 0, 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "GUID")
		row := annotateRow(topo, guid, 0)

		numPorts := firstInt(r, "NumPorts", "PortCount")
		lid := firstInt(r, "LID", "BaseLID")

		row["ClassVersion"] = firstInt(r, "ClassVersion")
		row["BaseVersion"] = firstInt(r, "BaseVersion")
		row["CapabilityMask"] = firstInt(r, "CapabilityMask")
		row["CapabilityMask2"] = firstInt(r, "CapabilityMask2")
		row["RespTimeValue"] = firstInt(r, "RespTimeValue")
		row["NodeType"] = firstString(r, "NodeType", "Type")
		row["VendorID"] = firstInt(r, "VendorID", "VendorId")
		row["NumPorts"] = numPorts
		row["DeviceID"] = firstInt(r, "DeviceID", "DeviceId")
		row["Revision"] = firstInt(r, "Revision", "Rev")
		row["LID"] = lid
		row["LMC"] = firstInt(r, "LMC")
		row["PartitionCap"] = firstInt(r, "PartitionCap")

		var issues []string
		severity := "normal"
		if numPorts == 0 {
			issues = append(issues, "No ports reported")
			severity = "warning"
			noPorts++
		}
		if lid == 0 {
			issues = append(issues, "No LID assigned")
			severity = "warning"
			noLID++
		}
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_nodes":     len(rows),
		"nodes_no_ports":  noPorts,
		"nodes_no_lid":    noLID,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- extended_switch_info (EXTENDED_SWITCH_INFO) ---

func extendedSwitchInfoAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	lftNearCap, mcastNearCap := 0, 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "GUID")
		row := annotateRow(topo, guid, 0)

		lftCap := firstFloat(r, "LinearFDBCap", "LFTCap")
		lftTop := firstFloat(r, "LinearFDBTop", "LFTTop")
		mcastCap := firstFloat(r, "MulticastFDBCap")
		mcastTop := firstFloat(r, "MulticastFDBTop")

		row["EnhancedPort0"] = firstBool(r, "EnhancedPort0", "EnhPort0")
		row["MulticastFDBCap"] = mcastCap
		row["MulticastFDBTop"] = mcastTop
		row["MulticastPKeyTableCap"] = firstInt(r, "MulticastPKeyTableCap")
		row["LinearFDBCap"] = lftCap
		row["LinearFDBTop"] = lftTop
		row["RandomFDBCap"] = firstInt(r, "RandomFDBCap")
		row["FilterRawInbound"] = firstBool(r, "FilterRawInbound")
		row["FilterRawOutbound"] = firstBool(r, "FilterRawOutbound")
		row["AdaptiveRoutingCapability"] = firstInt(r, "AdaptiveRoutingCapability", "ARCap")
		row["MultipathSupport"] = firstBool(r, "MultipathSupport")
		row["PortStateChange"] = firstInt(r, "PortStateChange")

		lftUtil := 0.0
		if lftCap > 0 {
			lftUtil = lftTop / lftCap * 100
		}
		mcastUtil := 0.0
		if mcastCap > 0 {
			mcastUtil = mcastTop / mcastCap * 100
		}

		severity := "normal"
		var issues []string
		if lftUtil >= 90 {
			issues = append(issues, "LFT near capacity")
			severity = "warning"
			lftNearCap++
		}
		if lftUtil >= 98 {
			severity = "critical"
		}
		if mcastUtil >= 90 {
			issues = append(issues, "Multicast FDB near capacity")
			if severity == "normal" {
				severity = "warning"
			}
			mcastNearCap++
		}
		row["LFTUtilizationPct"] = round1(lftUtil)
		row["MulticastUtilizationPct"] = round1(mcastUtil)
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_switches":      len(rows),
		"lft_near_capacity":   lftNearCap,
		"mcast_near_capacity": mcastNearCap,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- routing_config (ROUTING_CONFIG_HBF + ROUTING_CONFIG_PFRN) ---

func routingConfigAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	pfrnByGUID := indexRowsByGUID(inv.ReadTable("ROUTING_CONFIG_PFRN"), "NodeGuid", "GUID")

	rows := make([]scorer.Row, 0, len(frame.Rows))
	inconsistent := 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "GUID")
		row := annotateRow(topo, guid, 0)

		hbfEnabled := firstBool(r, "Enabled", "HBFEnabled")
		row["HBFEnabled"] = hbfEnabled
		row["HashFunction"] = firstString(r, "HashFunction", "HashType")
		row["HashSeed"] = firstInt(r, "Seed", "HashSeed")
		row["HashFields"] = firstString(r, "HashFields", "Fields")
		row["LoadBalancingMode"] = firstString(r, "LoadBalancingMode", "LBMode")
		row["WeightCap"] = firstInt(r, "WeightCap")
		row["WeightTop"] = firstInt(r, "WeightTop")

		var pfrnEnabled bool
		if pfrn, ok := pfrnByGUID[model.NormalizeGUID(guid)]; ok {
			pfrnEnabled = firstBool(pfrn, "Enabled", "PFRNEnabled")
			row["PFRNEnabled"] = pfrnEnabled
			row["PFRNTimeout"] = firstInt(pfrn, "Timeout", "PFRNTimeout")
			row["PFRNMaxRetries"] = firstInt(pfrn, "MaxRetries")
			row["PFRNMode"] = firstString(pfrn, "Mode", "PFRNMode")
		}

		severity := "normal"
		var issues []string
		if hbfEnabled && !pfrnEnabled {
			issues = append(issues, "HBF enabled but PFRN disabled - may affect fast recovery")
			severity = "info"
			inconsistent++
		}
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_nodes":       len(rows),
		"inconsistent_count": inconsistent,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- pci_performance (P_DB2 + P_DB1 + WARNINGS_PCI_DEGRADATION_CHECK), grounded on pci_performance_service.py ---

func pciPerformanceAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	linkInfo := indexRowsByGUID(inv.ReadTable("P_DB1"), "NodeGuid", "GUID")
	warnings := indexRowsByGUID(inv.ReadTable("WARNINGS_PCI_DEGRADATION_CHECK"), "NodeGuid", "GUID")

	rows := make([]scorer.Row, 0, len(frame.Rows))
	degraded := 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "GUID")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		correctable := firstInt(r, "CorrectableErrors", "CorrErrors")
		uncorrectable := firstInt(r, "UncorrectableErrors", "UncorrErrors")
		fatal := firstInt(r, "FatalErrors")
		receiverErrors := firstInt(r, "ReceiverErrors", "RxErrors")
		replayTimeout := firstInt(r, "ReplayTimerTimeout")

		var capSpeed, capWidth, staSpeed, staWidth int64
		if li, ok := linkInfo[model.NormalizeGUID(guid)]; ok {
			capSpeed = firstInt(li, "MaxLinkSpeed")
			capWidth = firstInt(li, "MaxLinkWidth")
		}
		staSpeed = firstInt(r, "LinkStaSpeed", "CurrentSpeed")
		staWidth = firstInt(r, "LinkStaWidth", "CurrentWidth")
		speedDegraded := capSpeed > 0 && staSpeed > 0 && staSpeed < capSpeed
		widthDegraded := capWidth > 0 && staWidth > 0 && staWidth < capWidth

		row["CorrectableErrors"] = correctable
		row["UncorrectableErrors"] = uncorrectable
		row["FatalErrors"] = fatal
		row["ReceiverErrors"] = receiverErrors
		row["BadTLP"] = firstInt(r, "BadTLP")
		row["BadDLLP"] = firstInt(r, "BadDLLP")
		row["ReplayNumRollover"] = firstInt(r, "ReplayNumRollover")
		row["ReplayTimerTimeout"] = replayTimeout
		row["IsSpeedDegraded"] = speedDegraded
		row["IsWidthDegraded"] = widthDegraded
		row["TotalAERErrors"] = correctable + uncorrectable + fatal
		if w, ok := warnings[model.NormalizeGUID(guid)]; ok {
			row["Summary"] = w.GetString("Summary")
		}

		severity := "normal"
		var issues []string
		switch {
		case fatal > 0:
			severity = "critical"
			issues = append(issues, "Fatal PCIe errors")
		case uncorrectable > 0:
			severity = "critical"
			issues = append(issues, "Uncorrectable errors")
		case speedDegraded:
			severity = "critical"
			issues = append(issues, "Speed degraded")
		case widthDegraded:
			severity = "warning"
			issues = append(issues, "Width degraded")
		case correctable > 100:
			severity = "warning"
			issues = append(issues, "High correctable errors")
		case replayTimeout > 0:
			severity = "warning"
			issues = append(issues, "Replay timeouts")
		}
		if severity != "normal" {
			degraded++
		}
		row["IsDegraded"] = severity != "normal"
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_devices":    len(rows),
		"degraded_devices": degraded,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- per_lane_performance (P_DB8), grounded on per_lane_performance_service.py ---

func perLanePerformanceAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	rows := make([]scorer.Row, 0, len(frame.Rows))
	lanesWithIssues := 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "GUID")
		port := portFromRowMulti(r, "PortNum", "PortNumber")
		row := annotateRow(topo, guid, port)

		lane := firstInt(r, "LaneNum", "Lane")
		bitErrors := firstInt(r, "BitErrors")
		symbolErrors := firstInt(r, "SymbolErrors")
		eyeHeight := firstFloat(r, "EyeHeight", "EyeHeightMV")
		snr := firstFloat(r, "SNR_dB", "SNR")

		row["LaneNum"] = lane
		row["EyeHeight"] = eyeHeight
		row["EyeWidth"] = firstFloat(r, "EyeWidth", "EyeWidthPS")
		row["EyeGrade"] = r.GetString("EyeGrade")
		row["LaneErrors"] = firstInt(r, "Errors", "LaneErrors")
		row["BitErrors"] = bitErrors
		row["SymbolErrors"] = symbolErrors
		row["SNRdB"] = snr
		row["JitterPs"] = firstFloat(r, "Jitter_ps", "Jitter")
		row["LinkTrainingStatus"] = firstString(r, "LinkTrainingStatus", "LTStatus")
		row["EQDone"] = firstBool(r, "EQDone", "EqualizationDone")

		severity := "normal"
		var issues []string
		if bitErrors > 0 {
			severity = "critical"
			issues = append(issues, "Bit errors on lane")
			lanesWithIssues++
		} else if symbolErrors > 0 {
			severity = "warning"
			issues = append(issues, "Symbol errors on lane")
			lanesWithIssues++
		}
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_lanes":       len(rows),
		"lanes_with_issues": lanesWithIssues,
	}
	return Result{Rows: rows, Summary: summary}
}

// --- n2n_security (N2N_KEY_INFO + N2N_NODE_INFO + N2N_PORT_INFO), grounded on n2n_security_service.py ---

func n2nSecurityAnalyze(inv *dataset.Inventory, frame model.Frame, topo *topology.Lookup) Result {
	nodeInfo := indexRowsByGUID(inv.ReadTable("N2N_NODE_INFO"), "NodeGuid", "GUID")
	portInfo := indexRowsByGUID(inv.ReadTable("N2N_PORT_INFO"), "NodeGuid", "GUID")

	rows := make([]scorer.Row, 0, len(frame.Rows))
	violations, noKeyCount := 0, 0

	for _, r := range frame.Rows {
		guid := firstString(r, "NodeGuid", "GUID")
		row := annotateRow(topo, guid, 0)

		keyPresent := firstBool(r, "KeyPresent", "HasKey")
		keyViolation := firstBool(r, "KeyViolation", "Violation")
		trapCount := firstInt(r, "TrapCount")

		row["KeyPresent"] = keyPresent
		row["KeyStatus"] = firstString(r, "KeyStatus", "Status")
		row["KeyViolation"] = keyViolation
		row["PartitionKey"] = firstString(r, "PartitionKey", "PKey")
		row["TrapCount"] = trapCount

		key := model.NormalizeGUID(guid)
		if ni, ok := nodeInfo[key]; ok {
			row["NodeType"] = firstString(ni, "NodeType", "Type")
			row["NumPorts"] = firstInt(ni, "NumPorts", "Ports")
			row["PartitionCap"] = firstInt(ni, "PartitionCap")
		}
		var classVersion int64
		if pi, ok := portInfo[key]; ok {
			classVersion = firstInt(pi, "ClassVersion")
			row["ClassVersion"] = classVersion
			row["CapabilityMask"] = firstInt(pi, "CapabilityMask", "CapMask")
		}

		severity := "normal"
		var issues []string
		if keyViolation {
			severity = "critical"
			issues = append(issues, "Key violation detected")
			violations++
		} else if !keyPresent {
			severity = "warning"
			issues = append(issues, "N2N enabled but no key present")
			noKeyCount++
		}
		if trapCount > 10 {
			if severity == "normal" {
				severity = "info"
			}
			issues = append(issues, "High trap count")
		}
		row["Severity"] = severity
		row["Issues"] = joinIssues(issues)

		rows = append(rows, row)
	}

	sortBySeverity(rows)
	summary := map[string]any{
		"total_nodes":       len(rows),
		"key_violations":    violations,
		"missing_key_count": noKeyCount,
	}
	return Result{Rows: rows, Summary: summary}
}
