package replay

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/blobstore"
	"github.com/hupe1980/kalman/resource"
	"github.com/hupe1980/kalman/trace"
)

// output streams estimates into a blob. The zero value discards them.
type output struct {
	blob     blobstore.WritableBlob
	enc      io.WriteCloser
	w        *trace.Writer
	variance []float32
}

func (r *Runner) createOutput(ctx context.Context, name string, dims int) (*output, error) {
	if name == "" {
		return &output{}, nil
	}

	blob, err := r.store.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	enc, err := trace.Create(resource.NewRateLimitedWriter(ctx, blob, r.rc), name)
	if err != nil {
		return nil, errors.Join(err, blob.Abort())
	}

	o := &output{
		blob:     blob,
		enc:      enc,
		w:        trace.NewWriter(enc),
		variance: make([]float32, dims),
	}
	if err := o.w.WriteHeader(dims); err != nil {
		return nil, errors.Join(err, o.abort())
	}
	return o, nil
}

func (o *output) write(kf *kalman.Filter) error {
	if o.w == nil {
		return nil
	}
	p := kf.Covariance()
	for i := range o.variance {
		o.variance[i] = p.At(i, i)
	}
	return o.w.Write(trace.Estimate{
		Time:     kf.Time(),
		State:    kf.State().Raw(),
		Variance: o.variance,
	})
}

func (o *output) close() error {
	if o.blob == nil {
		return nil
	}
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := o.enc.Close(); err != nil {
		return err
	}
	return o.blob.Close()
}

func (o *output) abort() error {
	if o.blob == nil {
		return nil
	}
	return o.blob.Abort()
}
