package pipeline

import (
	"fmt"
	"slices"
	"sync"

	"github.com/KaramelBytes/socialpulse-cli/internal/dataset"
)

// LabeledDataset is a loaded dataset together with its derived labels.
// It is read-only after construction and safe for concurrent use.
type LabeledDataset struct {
	source  *dataset.Dataset
	records []Record
}

// Label wraps ds with freshly derived labels.
func Label(ds *dataset.Dataset) *LabeledDataset {
	return &LabeledDataset{source: ds, records: DeriveLabels(ds)}
}

func (l *LabeledDataset) Name() string            { return l.source.Name() }
func (l *LabeledDataset) Schema() *dataset.Schema { return l.source.Schema() }
func (l *LabeledDataset) Len() int                { return len(l.records) }

// Records returns a fresh copy of every labeled record.
func (l *LabeledDataset) Records() []Record { return slices.Clone(l.records) }

// View applies spec to the full dataset.
func (l *LabeledDataset) View(spec FilterSpec) ([]Record, error) {
	return spec.Apply(l.records)
}

// Handle loads a dataset at most once and hands out the same immutable
// LabeledDataset to every caller, including a failed load's error.
type Handle struct {
	load func() (*dataset.Dataset, error)

	once sync.Once
	data *LabeledDataset
	err  error
}

// NewHandle returns a Handle that reads path on first use.
func NewHandle(path string, opt dataset.Options) *Handle {
	return NewHandleFunc(func() (*dataset.Dataset, error) {
		return dataset.Load(path, opt)
	})
}

// NewHandleFunc returns a Handle backed by an arbitrary loader.
func NewHandleFunc(load func() (*dataset.Dataset, error)) *Handle {
	return &Handle{load: load}
}

// Get returns the labeled dataset, loading it on the first call.
func (h *Handle) Get() (*LabeledDataset, error) {
	h.once.Do(func() {
		ds, err := h.load()
		if err != nil {
			h.err = fmt.Errorf("load dataset: %w", err)
			return
		}
		h.data = Label(ds)
	})
	return h.data, h.err
}
