// Copyright 2024 gorse Project Authors
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

package blob

import (
	"io"
	"strings"

	"github.com/gorse-io/feedsplit/config"
	"github.com/gorse-io/feedsplit/dataset"
	"github.com/juju/errors"
)

// Store keeps named artifacts in a directory or a bucket.
type Store interface {
	// Open a file for reading.
	Open(name string) (io.ReadCloser, error)
	// Create a file for writing. Content becomes visible only after the writer is closed without error.
	// The done channel is closed once the content has been stored or discarded.
	Create(name string) (Writer, chan struct{}, error)
	// List names of all files in the store.
	List() ([]string, error)
	// Remove a file.
	Remove(name string) error
}

// Writer is returned by Store.Create. Close blocks until the content is
// stored and reports any failure. CloseWithError discards the content.
type Writer interface {
	io.WriteCloser
	CloseWithError(cause error) error
}

// Open creates the store configured for output.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Output.Type {
	case config.BlobPOSIX:
		return NewPOSIX(cfg.Output.Dir), nil
	case config.BlobS3:
		return NewS3(cfg.Blob.S3, cfg.Output.Dir)
	case config.BlobGCS:
		return NewGCS(cfg.Blob.GCS, cfg.Output.Dir)
	case config.BlobAzure:
		return NewAzureBlob(cfg.Blob.Azure, cfg.Output.Dir)
	default:
		return nil, dataset.ConfigurationErrorf("output.type", "unknown blob store `%s`", cfg.Output.Type)
	}
}

type pipeWriter struct {
	*io.PipeWriter
	done chan struct{}
	err  error
}

// newPipeWriter streams written bytes to upload running in its own goroutine.
func newPipeWriter(upload func(r io.Reader) error) (*pipeWriter, chan struct{}) {
	pr, pw := io.Pipe()
	w := &pipeWriter{PipeWriter: pw, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		w.err = upload(pr)
		// unblock writers if upload gave up early
		if w.err != nil {
			_ = pr.CloseWithError(w.err)
		} else {
			_ = pr.Close()
		}
	}()
	return w, w.done
}

func (w *pipeWriter) Close() error {
	if err := w.PipeWriter.Close(); err != nil {
		return errors.Trace(err)
	}
	<-w.done
	return errors.Trace(w.err)
}

func (w *pipeWriter) CloseWithError(cause error) error {
	if err := w.PipeWriter.CloseWithError(cause); err != nil {
		return errors.Trace(err)
	}
	<-w.done
	return nil
}

func trimPrefix(name, prefix string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimPrefix(strings.TrimPrefix(name, prefix), "/")
}
