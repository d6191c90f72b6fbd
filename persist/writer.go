// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package persist

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/feedsplit/base/json"
	"github.com/gorse-io/feedsplit/base/log"
	"github.com/gorse-io/feedsplit/config"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/gorse-io/feedsplit/pipeline"
	"github.com/gorse-io/feedsplit/storage/blob"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	TrainTable             = "train"
	ValidationInputTable   = "validation_tr"
	ValidationHeldoutTable = "validation_te"
	TestInputTable         = "test_tr"
	TestHeldoutTable       = "test_te"
	InferenceTable         = "inference"

	UniqueItemsFile = "unique_iid.txt"
	Profile2IdFile  = "json_id/profile2id.json"
	Show2IdFile     = "json_id/show2id.json"
	Id2ProfileFile  = "json_id/id2profile.json"
	Id2ShowFile     = "json_id/id2show.json"
	ManifestFile    = "manifest.json"
)

// Manifest describes the artifacts of a run.
type Manifest struct {
	Version         string         `json:"version,omitempty"`
	Seed            int64          `json:"seed"`
	MinUserCount    int            `json:"min_user_count"`
	MinItemCount    int            `json:"min_item_count"`
	HeldoutUsers    int            `json:"heldout_users"`
	TestProp        float64        `json:"test_prop"`
	WithTest        bool           `json:"with_test"`
	Format          string         `json:"format"`
	NumUsers        int            `json:"n_users"`
	NumItems        int            `json:"n_items"`
	TrainUsers      int            `json:"n_train_users"`
	ValidationUsers int            `json:"n_validation_users"`
	TestUsers       int            `json:"n_test_users"`
	Rows            map[string]int `json:"rows"`
}

// Writer saves pipeline results to a blob store. Every artifact is stored
// whole or not at all.
type Writer struct {
	store   blob.Store
	format  string
	version string
}

func NewWriter(store blob.Store, format, version string) *Writer {
	return &Writer{store: store, format: format, version: version}
}

type table struct {
	name string
	rows []dataset.IndexedFeedback
}

// Write saves interaction tables, the item list, id mappings and finally the
// manifest. Test tables are skipped for two-way splits. Artifacts of an earlier
// run that this run does not produce are removed first, together with the old
// manifest, so the store never mixes indices of two runs.
func (w *Writer) Write(ctx context.Context, cfg config.DatasetConfig, result *pipeline.Result) (*Manifest, error) {
	tables := []table{
		{TrainTable, result.Train},
		{ValidationInputTable, result.ValidationInput},
		{ValidationHeldoutTable, result.ValidationHeldout},
	}
	if cfg.WithTest {
		tables = append(tables,
			table{TestInputTable, result.TestInput},
			table{TestHeldoutTable, result.TestHeldout})
	}
	tables = append(tables, table{InferenceTable, result.Inference})
	if err := w.removeStale(Artifacts(w.format, cfg.WithTest)); err != nil {
		return nil, errors.Trace(err)
	}

	manifest := &Manifest{
		Version:         w.version,
		Seed:            cfg.Seed,
		MinUserCount:    cfg.MinUserCount,
		MinItemCount:    cfg.MinItemCount,
		HeldoutUsers:    cfg.HeldoutUsers,
		TestProp:        cfg.TestProp,
		WithTest:        cfg.WithTest,
		Format:          w.format,
		NumUsers:        int(result.Profile2Id.Len()),
		NumItems:        int(result.Show2Id.Len()),
		TrainUsers:      result.Summary.TrainUsers,
		ValidationUsers: result.Summary.ValidationUsers,
		TestUsers:       result.Summary.TestUsers,
		Rows:            make(map[string]int),
	}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, errors.Trace(err)
		}
		name := t.name + "." + w.format
		if err := w.create(name, func(out io.Writer) error {
			return w.writeTable(out, t.rows)
		}); err != nil {
			return nil, errors.Trace(err)
		}
		manifest.Rows[name] = len(t.rows)
	}

	// retained items in index order
	if err := w.create(UniqueItemsFile, func(out io.Writer) error {
		for _, itemId := range result.Show2Id.GetNames() {
			if _, err := io.WriteString(out, itemId+"\n"); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, errors.Trace(err)
	}

	// id mappings
	for name, mapping := range map[string]any{
		Profile2IdFile: result.Profile2Id.Forward(),
		Show2IdFile:    result.Show2Id.Forward(),
		Id2ProfileFile: result.Profile2Id.Inverse(),
		Id2ShowFile:    result.Show2Id.Inverse(),
	} {
		if err := w.create(name, func(out io.Writer) error {
			return json.NewEncoder(out).Encode(mapping)
		}); err != nil {
			return nil, errors.Trace(err)
		}
	}

	if err := w.create(ManifestFile, func(out io.Writer) error {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(manifest)
	}); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("save artifacts",
		zap.Int("n_tables", len(tables)),
		zap.String("format", w.format))
	return manifest, nil
}

// Artifacts lists the names written by a run, the manifest last.
func Artifacts(format string, withTest bool) []string {
	names := []string{TrainTable, ValidationInputTable, ValidationHeldoutTable}
	if withTest {
		names = append(names, TestInputTable, TestHeldoutTable)
	}
	names = append(names, InferenceTable)
	for i := range names {
		names[i] += "." + format
	}
	return append(names, UniqueItemsFile, Profile2IdFile, Show2IdFile, Id2ProfileFile, Id2ShowFile, ManifestFile)
}

// removeStale deletes artifacts of any earlier run that are not in keep, and
// the manifest in every case. Unrelated files in the store are left alone.
func (w *Writer) removeStale(keep []string) error {
	names, err := w.store.List()
	if err != nil {
		return errors.Trace(err)
	}
	known := mapset.NewThreadUnsafeSet(Artifacts(config.FormatCSV, true)...)
	known.Append(Artifacts(config.FormatJSON, true)...)
	kept := mapset.NewThreadUnsafeSet(keep...)
	kept.Remove(ManifestFile)
	for _, name := range names {
		if !known.Contains(name) || kept.Contains(name) {
			continue
		}
		if err = w.store.Remove(name); err != nil {
			return errors.Annotatef(err, "failed to remove %s", name)
		}
		log.Logger().Info("remove stale artifact", zap.String("name", name))
	}
	return nil
}

// ReadManifest loads the manifest saved by the last complete run.
func ReadManifest(store blob.Store) (*Manifest, error) {
	r, err := store.Open(ManifestFile)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()
	var manifest Manifest
	if err = json.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, errors.Annotatef(err, "failed to decode %s", ManifestFile)
	}
	return &manifest, nil
}

func (w *Writer) writeTable(out io.Writer, rows []dataset.IndexedFeedback) error {
	if w.format == config.FormatJSON {
		if rows == nil {
			rows = []dataset.IndexedFeedback{}
		}
		return json.NewEncoder(out).Encode(rows)
	}
	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"uid", "iid"}); err != nil {
		return err
	}
	record := make([]string, 2)
	for _, row := range rows {
		record[0] = strconv.Itoa(int(row.UserIndex))
		record[1] = strconv.Itoa(int(row.ItemIndex))
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// create stores the output of write under name. The artifact is discarded if
// write fails.
func (w *Writer) create(name string, write func(io.Writer) error) error {
	wc, done, err := w.store.Create(name)
	if err != nil {
		return errors.Trace(err)
	}
	buf := bufio.NewWriter(wc)
	if err = write(buf); err == nil {
		err = buf.Flush()
	}
	if err != nil {
		if closeErr := wc.CloseWithError(err); closeErr != nil {
			log.Logger().Error("failed to discard artifact", zap.String("name", name), zap.Error(closeErr))
		}
		<-done
		return errors.Annotatef(err, "failed to write %s", name)
	}
	if err = wc.Close(); err != nil {
		return errors.Annotatef(err, "failed to save %s", name)
	}
	<-done
	log.Logger().Debug("save artifact", zap.String("name", name))
	return nil
}
