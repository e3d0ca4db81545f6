package blobstore

import (
	"context"
	"errors"
	"io"
	"sync"
)

// UploadFunc consumes r until EOF and stores its contents.
type UploadFunc func(ctx context.Context, r io.Reader) error

// NewStreamingBlob returns a WritableBlob whose writes are piped into upload,
// which runs on its own goroutine. Close waits for the upload to finish.
// Abort cancels the upload context and fails the pipe, so the backend never
// publishes a partial blob.
func NewStreamingBlob(ctx context.Context, upload UploadFunc) WritableBlob {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()

	w := &streamingBlob{
		pw:     pw,
		cancel: cancel,
		done:   make(chan error, 1),
	}

	go func() {
		err := upload(ctx, pr)
		_ = pr.CloseWithError(err)
		w.done <- err
	}()

	return w
}

type streamingBlob struct {
	pw     *io.PipeWriter
	cancel context.CancelFunc
	done   chan error

	once sync.Once
	err  error
}

func (w *streamingBlob) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *streamingBlob) Close() error {
	return w.finish(nil)
}

func (w *streamingBlob) Abort() error {
	if err := w.finish(ErrAborted); !errors.Is(err, ErrAborted) {
		return err
	}
	return nil
}

func (w *streamingBlob) finish(cause error) error {
	w.once.Do(func() {
		if cause != nil {
			w.cancel()
			_ = w.pw.CloseWithError(cause)
		} else {
			_ = w.pw.Close()
		}
		err := <-w.done
		w.cancel()
		if cause != nil {
			err = cause
		}
		w.err = err
	})
	return w.err
}
