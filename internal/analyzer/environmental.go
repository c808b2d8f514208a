package analyzer

import (
	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

// Fan implements the fan-alert portion of Family E (§4.4): fans outside
// [MinSpeed, MaxSpeed].
type Fan struct{}

func (Fan) Name() string { return "fan" }

func (Fan) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable("FANS_INFO")
	if frame.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	topo := inv.Topology()

	var rows []scorer.Row
	var anomalyFrame anomaly.Frame
	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		row := annotateRow(topo, guid, port)

		speed, _ := r.GetFloat("Speed")
		minSpeed, _ := r.GetFloat("MinSpeed")
		maxSpeed, _ := r.GetFloat("MaxSpeed")
		row["Speed"] = speed
		row["MinSpeed"] = minSpeed
		row["MaxSpeed"] = maxSpeed

		switch {
		case minSpeed > 0 && speed < minSpeed:
			w := max01(minSpeed - speed)
			anomalyFrame.Add(guid, port, anomaly.FanFailure, w)
			row["IBH Anomaly"] = anomaly.Display(anomaly.FanFailure)
			row["IBH Anomaly Weight"] = w
		case maxSpeed > 0 && speed > maxSpeed:
			w := max01(speed - maxSpeed)
			anomalyFrame.Add(guid, port, anomaly.FanFailure, w)
			row["IBH Anomaly"] = anomaly.Display(anomaly.FanFailure)
			row["IBH Anomaly Weight"] = w
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: anomalyFrame, Summary: summaryCount(rows, len(anomalyFrame.Rows))}
}

// PowerSensors implements the PSU-status portion of Family E.
type PowerSensors struct{}

func (PowerSensors) Name() string { return "power_sensors" }

func (PowerSensors) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable("PSU_INFO")
	if frame.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	topo := inv.Topology()

	var rows []scorer.Row
	var anomalyFrame anomaly.Frame
	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		row := annotateRow(topo, guid, port)

		status := r.GetString("Status")
		row["Status"] = status

		switch status {
		case "Critical", "Fault", "Failed":
			anomalyFrame.Add(guid, port, anomaly.PSUCritical, 1.0)
			row["IBH Anomaly"] = anomaly.Display(anomaly.PSUCritical)
			row["IBH Anomaly Weight"] = 1.0
		case "Warning", "Degraded":
			anomalyFrame.Add(guid, port, anomaly.PSUWarning, 1.0)
			row["IBH Anomaly"] = anomaly.Display(anomaly.PSUWarning)
			row["IBH Anomaly Weight"] = 1.0
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: anomalyFrame, Summary: summaryCount(rows, len(anomalyFrame.Rows))}
}

// TempAlerts implements the temperature-sensor portion of Family E.
type TempAlerts struct{}

func (TempAlerts) Name() string { return "temp_alerts" }

func (TempAlerts) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable("TEMP_SENSORS_INFO")
	if frame.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	topo := inv.Topology()

	var rows []scorer.Row
	var anomalyFrame anomaly.Frame
	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		row := annotateRow(topo, guid, port)

		temp, _ := r.GetFloat("Temperature (c)")
		row["Temperature (c)"] = temp

		switch {
		case temp >= 95:
			w := max01(temp - 60)
			anomalyFrame.Add(guid, port, anomaly.TempCritical, w)
			row["IBH Anomaly"] = anomaly.Display(anomaly.TempCritical)
			row["IBH Anomaly Weight"] = w
		case temp >= 80:
			w := max01(temp - 60)
			anomalyFrame.Add(guid, port, anomaly.TempWarning, w)
			row["IBH Anomaly"] = anomaly.Display(anomaly.TempWarning)
			row["IBH Anomaly Weight"] = w
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: anomalyFrame, Summary: summaryCount(rows, len(anomalyFrame.Rows))}
}

func max01(v float64) float64 {
	if v < 0.1 {
		return 0.1
	}
	return v
}
