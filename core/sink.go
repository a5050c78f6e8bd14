package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
)

const (
	DefaultStoreFile        = "binance_crypto_data.json"
	DefaultStatsFile        = "monthly_stats.json"
	DefaultCorrelationsFile = "pair_correlations.json"
	DefaultReturnsFile      = "monthly_returns.json"
)

// WriteJSON writes v to path through a temp file so a failed write never leaves half a document
func WriteJSON(path string, v any) error {
	staged := &StagedFiles{}
	if err := staged.add(path, v); err != nil {
		return err
	}
	return staged.Commit()
}

type stagedFile struct {
	tmp  string
	path string
}

// StagedFiles are documents written to temp files next to their destination. Commit renames
// them into place, Discard removes them.
type StagedFiles struct {
	files []stagedFile
}

func (sf *StagedFiles) add(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ex.ErrIO, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ex.ErrIO, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing %s: %v", ex.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing %s: %v", ex.ErrIO, path, err)
	}

	sf.files = append(sf.files, stagedFile{tmp: tmp.Name(), path: path})
	return nil
}

func (sf *StagedFiles) Commit() error {
	for i, f := range sf.files {
		if err := os.Rename(f.tmp, f.path); err != nil {
			sf.files = sf.files[i:]
			sf.Discard()
			return fmt.Errorf("%w: %v", ex.ErrIO, err)
		}
	}
	sf.files = nil
	return nil
}

func (sf *StagedFiles) Discard() {
	for _, f := range sf.files {
		os.Remove(f.tmp)
	}
	sf.files = nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ex.ErrIO, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// FileSink writes the stats and the pair correlations as two separate json documents,
// and the monthly return series as a third
type FileSink struct {
	StatsFile        string
	CorrelationsFile string
	ReturnsFile      string
}

func DefaultFileSink(dir string) FileSink {
	return FileSink{
		StatsFile:        filepath.Join(dir, DefaultStatsFile),
		CorrelationsFile: filepath.Join(dir, DefaultCorrelationsFile),
		ReturnsFile:      filepath.Join(dir, DefaultReturnsFile),
	}
}

// Stage encodes and writes every document before any of them is put in place, so an
// encoding or write failure leaves no result files behind
func (fs FileSink) Stage(stats *m.MonthlyStatistics) (*StagedFiles, error) {
	staged := &StagedFiles{}
	docs := []struct {
		path string
		v    any
	}{
		{fs.StatsFile, stats.Stats},
		{fs.CorrelationsFile, stats.Correlations},
		{fs.ReturnsFile, stats.Returns},
	}

	for _, d := range docs {
		if err := staged.add(d.path, d.v); err != nil {
			staged.Discard()
			return nil, err
		}
	}
	return staged, nil
}

func (fs FileSink) Save(stats *m.MonthlyStatistics) error {
	staged, err := fs.Stage(stats)
	if err != nil {
		return err
	}
	return staged.Commit()
}

func SaveTimeSeriesStore(path string, store m.TimeSeriesStore) error {
	return WriteJSON(path, store)
}

// LoadTimeSeriesStore reads a store file. Records are validated as they are decoded.
func LoadTimeSeriesStore(path string) (m.TimeSeriesStore, error) {
	var store m.TimeSeriesStore
	if err := readJSON(path, &store); err != nil {
		return nil, err
	}
	if store == nil {
		store = make(m.TimeSeriesStore)
	}
	return store, nil
}
