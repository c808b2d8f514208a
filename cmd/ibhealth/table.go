package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/ftahirops/ibhealth/internal/scorer"
)

// renderTable writes a human-readable summary of an AnalyzeIBDiagnet
// payload to w: a key/value health table followed by a ranked issue
// table, in the same tablewriter.Append-per-row shape the gpud
// infiniband reference uses for its own device/port dump.
func renderTable(w io.Writer, payload map[string]any) {
	report, _ := payload["health"].(scorer.Report)

	fmt.Fprintln(w, "Fabric Health Summary")
	summary := tablewriter.NewWriter(w)
	summary.SetAlignment(tablewriter.ALIGN_LEFT)
	summary.Append([]string{"Score", fmt.Sprintf("%d", report.Score)})
	summary.Append([]string{"Grade", report.Grade})
	summary.Append([]string{"Status", report.Status})
	summary.Append([]string{"Total Nodes", humanize.Comma(int64(report.TotalNodes))})
	summary.Append([]string{"Total Ports", humanize.Comma(int64(report.TotalPorts))})
	summary.Append([]string{"Critical", fmt.Sprintf("%d", report.Summary.Critical)})
	summary.Append([]string{"Warning", fmt.Sprintf("%d", report.Summary.Warning)})
	summary.Append([]string{"Info", fmt.Sprintf("%d", report.Summary.Info)})
	summary.Render()

	if len(report.CategoryScores) > 0 {
		fmt.Fprintln(w, "\nCategory Scores")
		cats := tablewriter.NewWriter(w)
		cats.SetHeader([]string{"Category", "Score"})
		cats.SetAlignment(tablewriter.ALIGN_CENTER)
		names := make([]string, 0, len(report.CategoryScores))
		for name := range report.CategoryScores {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cats.Append([]string{name, fmt.Sprintf("%.1f", report.CategoryScores[name])})
		}
		cats.Render()
	}

	if len(report.Issues) == 0 {
		return
	}

	fmt.Fprintln(w, "\nIssues")
	issues := tablewriter.NewWriter(w)
	issues.SetHeader([]string{"Severity", "Category", "Weight", "Node", "Port", "Description"})
	issues.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, iss := range scorer.SortIssuesBySeverity(report.Issues) {
		port := "-"
		if iss.PortNumber != nil {
			port = fmt.Sprintf("%d", *iss.PortNumber)
		}
		issues.Append([]string{
			strings.ToUpper(string(iss.Severity)),
			string(iss.Category),
			fmt.Sprintf("%.2f", iss.Weight),
			iss.NodeGUID,
			port,
			iss.Description,
		})
	}
	issues.Render()
}
