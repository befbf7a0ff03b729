package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpggio/defectlog/internal/domain/record"
	"github.com/rpggio/defectlog/internal/repository"
	"github.com/tidwall/gjson"
)

// RecordRepository implements record.Repository over a single JSON file
// holding an array of records.
type RecordRepository struct {
	path string
}

// NewRecordRepository creates a repository backed by the file at path.
func NewRecordRepository(path string) *RecordRepository {
	return &RecordRepository{path: path}
}

// Path returns the backing file path.
func (r *RecordRepository) Path() string {
	return r.path
}

// Load reads every record from the file. A missing file is an empty set.
// Entries written by older versions may use "quality" instead of
// "qualidade", carry no id, or store the timestamp as a string.
func (r *RecordRepository) Load(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return []record.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", repository.ErrCorrupt, r.path)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: %s does not hold a record list", repository.ErrCorrupt, r.path)
	}

	records := make([]record.Record, 0, len(root.Array()))
	var decodeErr error
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			decodeErr = fmt.Errorf("%w: unexpected %s entry in %s", repository.ErrCorrupt, item.Type, r.path)
			return false
		}
		records = append(records, decodeRecord(item))
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return records, nil
}

// Save overwrites the file with the given records. The content is written
// to a sibling temp file first and renamed into place.
func (r *RecordRepository) Save(ctx context.Context, records []record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []record.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	dir := filepath.Dir(r.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create record dir: %w", err)
		}
	}
	return writeFileAtomic(r.path, data)
}

func decodeRecord(item gjson.Result) record.Record {
	quality := item.Get("qualidade")
	if !quality.Exists() {
		quality = item.Get("quality")
	}
	return record.Record{
		ID:         item.Get("id").String(),
		Time:       item.Get("time").String(),
		Quality:    quality.String(),
		Occurrence: item.Get("occurrence").String(),
		Timestamp:  item.Get("timestamp").Float(),
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close records: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace records: %w", err)
	}
	return nil
}
