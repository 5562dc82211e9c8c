package graph

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gradflow-ml/gradflow/internal/inits"
	"github.com/gradflow-ml/gradflow/internal/serialization"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// foldShape maps a parameter shape onto the stored (rows, cols) convention:
// the leading dimension becomes rows and everything else cols, except a true
// one-dimensional column, which folds to (1, N).
func foldShape(s tensor.Shape) (rows, cols int) {
	rows = s[0]
	cols = s.Elements() / rows
	if cols == 1 && rows > 1 {
		return 1, rows
	}
	return rows, cols
}

// Save writes every parameter to path, one named (rows, cols) float32 array
// each, in sorted name order.
func (g *Graph) Save(path string) error {
	if err := g.params.allocateForward(false); err != nil {
		return err
	}

	w := serialization.NewWriter(path)
	for _, name := range g.params.Names() {
		p := g.params.get(name)
		rows, cols := foldShape(p.Shape())
		err := w.Append(serialization.Array{
			Name: name,
			Rows: rows,
			Cols: cols,
			Data: p.Val().ToSlice(),
		})
		if err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	klog.V(1).Infof("graph: saved %d parameters to %s", g.params.Len(), path)
	return nil
}

// Load reads parameters from path. Parameters already declared on the graph
// must all be present in the file and keep their shapes; arrays without a
// declared parameter are registered as new ones under the stored (rows,
// cols) shape.
func (g *Graph) Load(path string) error {
	r, err := serialization.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	stored := make(map[string]serialization.ArrayMeta, len(r.Arrays()))
	for _, meta := range r.Arrays() {
		stored[meta.Name] = meta
	}
	for _, name := range g.params.Names() {
		if _, ok := stored[name]; !ok {
			return errors.Wrapf(ErrMissingParameter, "%q", name)
		}
	}

	for _, meta := range r.Arrays() {
		values, err := r.Read(meta)
		if err != nil {
			return err
		}
		if p := g.params.get(meta.Name); p != nil {
			rows, cols := foldShape(p.Shape())
			if rows != meta.Rows || cols != meta.Cols {
				return errors.Wrapf(ErrShapeMismatch, "param %q stored as (%d, %d), declared %v",
					meta.Name, meta.Rows, meta.Cols, p.Shape())
			}
			if p.Val() != nil {
				if err := p.Val().SetAll(values); err != nil {
					return err
				}
			} else {
				p.init = inits.FromSlice(values)
				p.initialized = false
			}
			continue
		}

		p := &paramNode{
			Node: newSourceNode(g, "param", tensor.NewShape(meta.Rows, meta.Cols), true),
			init: inits.FromSlice(values),
		}
		p.SetName(meta.Name)
		g.params.add(p)
	}

	klog.V(1).Infof("graph: loaded %d parameters from %s", len(r.Arrays()), path)
	return nil
}
