package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ftahirops/ibhealth/internal/analyzer"
	"github.com/ftahirops/ibhealth/internal/config"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

func writeDump(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fabric.db_csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func minimalDump() string {
	return "" +
		"START_NODES\n" +
		"NodeGUID,NodeDesc,NodeType\n" +
		"0x1,\"switch-a\",2\n" +
		"0x2,\"hca-a\",1\n" +
		"END_NODES\n" +
		"START_LINKS\n" +
		"NodeGUID1,PortNumber1,NodeGUID2,PortNumber2\n" +
		"0x1,1,0x2,1\n" +
		"END_LINKS\n" +
		"START_PORTS\n" +
		"NodeGUID,PortNumber,PortState,PortPhyState,LinkSpeedSupported,LinkSpeedActive,LinkWidthSupported,LinkWidthActive\n" +
		"0x1,1,4,5,0x800,0x800,0x08,0x08\n" +
		"END_PORTS\n" +
		"START_PM_DELTA\n" +
		"NodeGUID,PortNumber,PortXmitWaitExt,PortRcvFECN,PortRcvFECNExt,PortRcvBECN,PortRcvBECNExt,PortXmitDataExt\n" +
		"0x1,1,0,0,0,0,0,1000\n" +
		"END_PM_DELTA\n"
}

func TestAnalyzeIBDiagnetProducesPayload(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, minimalDump())

	o := New(config.Default(), dataset.NewRegistry(), analyzer.FirmwarePolicy{}, nil)
	payload, err := o.AnalyzeIBDiagnet(context.Background(), dir)
	require.NoError(t, err)

	health, ok := payload["health"].(scorer.Report)
	require.True(t, ok, "expected health report in payload, got %T", payload["health"])
	require.NotEmpty(t, health.Grade)

	require.Contains(t, payload, "xmit_data")
	require.Contains(t, payload, "data")

	requestID, ok := payload["request_id"].(string)
	require.True(t, ok, "expected a string request_id in payload")
	require.NotEmpty(t, requestID)

	require.Equal(t, 0, o.Registry.Len(), "expected dataset registry to be released")
}

func TestAnalyzeIBDiagnetNoDumpFile(t *testing.T) {
	dir := t.TempDir()
	o := New(nil, nil, analyzer.FirmwarePolicy{}, nil)
	_, err := o.AnalyzeIBDiagnet(context.Background(), dir)
	require.ErrorIs(t, err, ErrNoDumpFile)
}

func TestHeuristicProblemMarkers(t *testing.T) {
	require.True(t, heuristicProblemMarkers(scorer.Row{"PortState": "LinkDown"}))
	require.False(t, heuristicProblemMarkers(scorer.Row{"PortState": "Active"}))
}
