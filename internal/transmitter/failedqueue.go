package transmitter

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// maxFailedBatches caps the failed-batch queue at the 10 newest batches.
const maxFailedBatches = 10

const failedQueueFile = "failed-batches.json"

// saveFailedBatches atomically persists batches to storageDir via a
// temp-file-then-rename write.
func saveFailedBatches(storageDir string, batches []model.SecureEventBatch) error {
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(batches)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(storageDir, "failed-batches-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	target := filepath.Join(storageDir, failedQueueFile)
	if err := os.Rename(tmpPath, target); err != nil {
		return err
	}
	cleanup = false
	return nil
}

// loadFailedBatches reads previously persisted failed batches, if any.
func loadFailedBatches(storageDir string) ([]model.SecureEventBatch, error) {
	data, err := os.ReadFile(filepath.Join(storageDir, failedQueueFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var batches []model.SecureEventBatch
	if err := json.Unmarshal(data, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// clearFailedBatches removes the on-disk queue file after a successful
// restore.
func clearFailedBatches(storageDir string) {
	os.Remove(filepath.Join(storageDir, failedQueueFile))
}
