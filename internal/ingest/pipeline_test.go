package ingest

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fm-dev-mx/real-estate-insights/config"
	"github.com/fm-dev-mx/real-estate-insights/internal/models"
	"github.com/fm-dev-mx/real-estate-insights/internal/queue"
)

const exportCSV = `id,fechaAlta,status,tipoOperacion,tipoDeContrato,precio,m2C,m2T,recamaras,banos,medios_banos,descripcion,colonia,municipio,latitud,longitud
EB-001,2025-04-01,enPromocion,venta,exclusiva,2500000,120,90,3,2,1,Casa remodelada,Roma Norte,Cuauhtemoc,19.41,-99.17
EB-002,2025-04-02,enPromocion,venta,abierta,,,80,2,1,0,,Condesa,Cuauhtemoc,19.41,-99.17
`

func testPipeline(t *testing.T, q *queue.PropertyQueue) (*Pipeline, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.InventoryDir = t.TempDir()
	cfg.Paths.ReportDir = t.TempDir()
	cfg.BatchProcessing.MaxBatchSize = 100

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewPipeline(q, cfg, logger), cfg
}

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunProcessesNewestExport(t *testing.T) {
	q := queue.NewPropertyQueue(4, nil)
	defer q.Close()
	p, cfg := testPipeline(t, q)

	var mu sync.Mutex
	var received []*models.Property
	done := make(chan struct{})
	q.Subscribe(func(batch []*models.Property) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, batch...)
		close(done)
		return nil
	})
	q.Start()

	writeExport(t, cfg.Paths.InventoryDir, "inventory.csv", exportCSV)

	report, err := p.Run()
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "inventory.csv", report.SourceFile)
	assert.Equal(t, 2, report.RecordCount)
	assert.Equal(t, 1, report.CriticalCount)
	assert.Equal(t, 1, report.Enqueued)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for enqueued batch")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, "EB-001", received[0].ID)
	assert.False(t, received[0].HasCriticalGaps)
	assert.True(t, received[1].HasCriticalGaps)

	// Gap artifacts land in the report directory.
	_, err = os.Stat(filepath.Join(cfg.Paths.ReportDir, "critical_gap_ids.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Paths.ReportDir, "gap_report.log"))
	assert.NoError(t, err)
}

func TestRunPicksMostRecentExport(t *testing.T) {
	q := queue.NewPropertyQueue(4, nil)
	defer q.Close()
	p, cfg := testPipeline(t, q)

	old := writeExport(t, cfg.Paths.InventoryDir, "old.csv", exportCSV)
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))
	writeExport(t, cfg.Paths.InventoryDir, "fresh.csv", exportCSV)

	report, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, "fresh.csv", report.SourceFile)
}

func TestRunWithEmptyInventoryDir(t *testing.T) {
	q := queue.NewPropertyQueue(4, nil)
	defer q.Close()
	p, _ := testPipeline(t, q)

	_, err := p.Run()
	assert.ErrorIs(t, err, ErrNoInventoryFile)
}

func TestRunIgnoresNonExportFiles(t *testing.T) {
	q := queue.NewPropertyQueue(4, nil)
	defer q.Close()
	p, cfg := testPipeline(t, q)

	writeExport(t, cfg.Paths.InventoryDir, "notes.txt", "not an export")

	_, err := p.Run()
	assert.ErrorIs(t, err, ErrNoInventoryFile)
}

func TestRunSplitsIntoBatches(t *testing.T) {
	q := queue.NewPropertyQueue(8, nil)
	defer q.Close()
	p, cfg := testPipeline(t, q)
	cfg.BatchProcessing.MaxBatchSize = 1

	writeExport(t, cfg.Paths.InventoryDir, "inventory.csv", exportCSV)

	report, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Enqueued)
	assert.Equal(t, 2, q.Len())
}

func TestRunClosedQueueFails(t *testing.T) {
	q := queue.NewPropertyQueue(4, nil)
	p, cfg := testPipeline(t, q)
	require.NoError(t, q.Close())

	writeExport(t, cfg.Paths.InventoryDir, "inventory.csv", exportCSV)

	_, err := p.Run()
	assert.ErrorIs(t, err, queue.ErrQueueClosed)
}
