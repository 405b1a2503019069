package persistence

import (
	"counterd/internal/models"
	"counterd/internal/persistence/interfaces"
	"counterd/internal/providers"
	"counterd/internal/structures"
	"fmt"
	json "github.com/goccy/go-json"
	"os"
	"path/filepath"
	"time"
)

// FileManager stores the whole snapshot in a single file.
type FileManager struct {
	path       string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		path:       conf.Persistence.FilePath,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
	}
}

func (f *FileManager) Path() string {
	return f.path
}

// Save writes the snapshot to a temp file and renames it over the previous
// copy, which stays intact if any step fails.
func (f *FileManager) Save(snapshot *models.Snapshot) error {
	start := time.Now()
	err := f.save(snapshot)
	f.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		f.metrics.IncPersistenceErrors()
		f.logger.Errorf(providers.TypeStore, "Error while persisting snapshot to %s: %s", f.path, err)
		return err
	}
	f.logger.Debugf(providers.TypeStore, "Persisted snapshot to %s", f.path)
	return nil
}

func (f *FileManager) save(snapshot *models.Snapshot) error {
	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, f.path); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return syncDir(filepath.Dir(f.path))
}

// syncDir flushes directory entries so a completed rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err = d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// Load returns an empty snapshot when no file exists yet.
func (f *FileManager) Load() (*models.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Infof(providers.TypeStore, "No snapshot at %s, starting empty", f.path)
			return models.NewSnapshot(), nil
		}
		return nil, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", f.path, err)
	}

	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(decompressedData, &probe); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}

	if probe.Version >= models.SnapshotVersion {
		var snapshot models.Snapshot
		if err := json.Unmarshal(decompressedData, &snapshot); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.path, err)
		}
		snapshot.Repair()
		return &snapshot, nil
	}

	// Single-channel layout without a version field
	f.logger.Warnf(providers.TypeStore, "Unversioned snapshot found, try to migrate from single channel format")
	var legacy models.LegacyStorage
	if err := json.Unmarshal(decompressedData, &legacy); err != nil {
		f.logger.Warnf(providers.TypeStore, "Migration failed")
		return nil, fmt.Errorf("decode legacy %s: %w", f.path, err)
	}
	snapshot := legacy.Migrate()
	f.logger.Warnf(providers.TypeStore, "Migration successful: %d requests, %d bosses moved to channel %q",
		len(snapshot.UninstallRequests[models.DefaultChannel]), len(snapshot.Bosses[models.DefaultChannel]), models.DefaultChannel)
	return snapshot, nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
