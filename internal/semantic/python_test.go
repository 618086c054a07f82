package semantic

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/utils"
)

func testPool(t *testing.T, batchSize int) *PythonWorkerPool {
	t.Helper()
	cfg := &config.SemanticConfig{
		Model:       "all-MiniLM-L6-v2",
		BatchSize:   batchSize,
		WorkerCount: 1,
		TimeoutMs:   2000,
		Python:      config.PythonConfig{ConfigDir: t.TempDir()},
	}
	return NewPythonWorkerPool(utils.NewDiscardLogger(), cfg)
}

// serveTasks answers queued tasks in place of Python workers.
func serveTasks(p *PythonWorkerPool) {
	go func() {
		for task := range p.taskQueue {
			out := make([]Embedding, len(task.Sentences))
			for i, s := range task.Sentences {
				out[i] = Embedding{float64(len(s))}
			}
			task.Result <- TaskResult{Embeddings: out}
		}
	}()
}

func TestPythonWorkerPool_EmbedBatches(t *testing.T) {
	p := testPool(t, 2)
	serveTasks(p)
	defer close(p.taskQueue)

	embeddings, err := p.Embed(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)

	assert.Equal(t, []Embedding{{1}, {2}, {3}, {4}, {5}}, embeddings)
}

func TestPythonWorkerPool_EmbedTimesOut(t *testing.T) {
	p := testPool(t, 8)
	p.cfg.TimeoutMs = 50

	start := time.Now()
	_, err := p.Embed(context.Background(), []string{"nobody answers"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPythonWorkerPool_ExtractScript(t *testing.T) {
	p := testPool(t, 8)

	require.NoError(t, p.extractScriptIfNeeded())

	script, err := os.ReadFile(p.script)
	require.NoError(t, err)
	assert.Equal(t, embeddedPythonScript, string(script))

	requirements, err := os.ReadFile(filepath.Join(filepath.Dir(p.script), "requirements.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(requirements), "sentence-transformers")
}

func TestPythonWorkerPool_FailsFastWithoutWorkers(t *testing.T) {
	p := testPool(t, 8)
	p.cfg.TimeoutMs = 5000

	// no venv exists, so every worker fails to start
	p.start()
	p.wg.Wait()
	require.Equal(t, int32(0), p.alive.Load())

	start := time.Now()
	_, err := p.Embed(context.Background(), []string{"nobody answers"})

	assert.ErrorIs(t, err, ErrNoWorkers)
	assert.Less(t, time.Since(start), time.Second)
}
