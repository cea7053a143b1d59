package vision

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"pupilla/internal/engine"
	"pupilla/pkg/log"
)

// newObservationSource wires a decoded video to a detector. workers > 1
// fans frames out to a pool and restores observation order afterwards.
func newObservationSource(ctx context.Context, src *videoSource, det Detector,
	workers, failLimit int) engine.ObservationSource {
	logger := log.WithComponent(ctx, "locator")
	if workers > 1 {
		return newPooledSource(ctx, src, det, workers, failLimit, logger)
	}
	return &serialSource{
		src:       src,
		det:       det,
		failLimit: failLimit,
		logger:    logger,
	}
}

// serialSource locates eyes frame by frame on the caller's goroutine.
type serialSource struct {
	src       *videoSource
	det       Detector
	failLimit int
	fails     int
	logger    *logrus.Entry
}

func (s *serialSource) Info() engine.VideoInfo { return s.src.Info() }

func (s *serialSource) Next(ctx context.Context) (engine.FrameObservation, error) {
	frame, ok, err := s.src.next()
	if err != nil {
		return engine.FrameObservation{}, err
	}
	if !ok {
		return engine.FrameObservation{}, io.EOF
	}
	defer frame.mat.Close()

	obs := engine.FrameObservation{
		FrameIndex: frame.index,
		Timestamp:  frame.timestamp,
	}

	pair, err := s.det.DetectEyes(ctx, frame.mat)
	if err != nil {
		s.fails++
		if s.fails >= s.failLimit {
			return engine.FrameObservation{}, fmt.Errorf(
				"%w: %d consecutive detector failures: %v",
				engine.ErrUpstreamUnavailable, s.fails, err)
		}
		s.logger.WithError(err).Warnf("detector failed on frame %d", frame.index)
		return obs, nil
	}
	s.fails = 0

	if pair != nil {
		obs.FaceFound = true
		obs.LeftEye = pair.Left
		obs.RightEye = pair.Right
	}
	return obs, nil
}

func (s *serialSource) Close() error { return s.src.Close() }

// pooledSource runs detection on a worker pool. Frames carry a sequence
// number; Next buffers out-of-order results and releases them in sequence,
// so downstream code sees the same ordering as the serial path.
type pooledSource struct {
	src    *videoSource
	logger *logrus.Entry

	cancel  context.CancelFunc
	results chan seqObservation
	readErr chan error
	wg      sync.WaitGroup

	pending map[int]engine.FrameObservation
	nextSeq int
	done    bool

	fails     atomic.Int64
	failLimit int
	upOnce    sync.Once
	upErr     error
}

type seqObservation struct {
	seq int
	obs engine.FrameObservation
}

type seqFrame struct {
	seq   int
	frame sampledFrame
}

func newPooledSource(parent context.Context, src *videoSource, det Detector,
	workers, failLimit int, logger *logrus.Entry) *pooledSource {
	ctx, cancel := context.WithCancel(parent)
	p := &pooledSource{
		src:       src,
		logger:    logger,
		cancel:    cancel,
		results:   make(chan seqObservation, workers*2),
		readErr:   make(chan error, 1),
		pending:   make(map[int]engine.FrameObservation),
		failLimit: failLimit,
	}

	jobs := make(chan seqFrame, workers)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(jobs)
		seq := 0
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			frame, ok, err := src.next()
			if err != nil {
				p.readErr <- err
				return
			}
			if !ok {
				return
			}
			select {
			case jobs <- seqFrame{seq: seq, frame: frame}:
				seq++
			case <-ctx.Done():
				frame.mat.Close()
				return
			}
		}
	}()

	var workerWg sync.WaitGroup
	for i := 0; i < workers; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for job := range jobs {
				obs := p.locate(ctx, det, job.frame)
				job.frame.mat.Close()
				select {
				case p.results <- seqObservation{seq: job.seq, obs: obs}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		workerWg.Wait()
		// Workers that left early on cancellation leave frames behind.
		for job := range jobs {
			job.frame.mat.Close()
		}
		close(p.results)
	}()

	return p
}

// locate never fails a single frame; detector errors degrade to a no-face
// observation. The consecutive-failure count is shared across workers, so
// near the limit it is approximate, which is fine for a systemic-outage
// tripwire.
func (p *pooledSource) locate(ctx context.Context, det Detector, frame sampledFrame) engine.FrameObservation {
	obs := engine.FrameObservation{
		FrameIndex: frame.index,
		Timestamp:  frame.timestamp,
	}
	pair, err := det.DetectEyes(ctx, frame.mat)
	if err != nil {
		if n := p.fails.Add(1); n >= int64(p.failLimit) {
			p.upOnce.Do(func() {
				p.upErr = fmt.Errorf(
					"%w: %d consecutive detector failures: %v",
					engine.ErrUpstreamUnavailable, n, err)
			})
			p.cancel()
		} else {
			p.logger.WithError(err).Warnf("detector failed on frame %d", frame.index)
		}
		return obs
	}
	p.fails.Store(0)
	if pair != nil {
		obs.FaceFound = true
		obs.LeftEye = pair.Left
		obs.RightEye = pair.Right
	}
	return obs
}

func (p *pooledSource) Info() engine.VideoInfo { return p.src.Info() }

func (p *pooledSource) Next(ctx context.Context) (engine.FrameObservation, error) {
	for {
		if obs, ok := p.pending[p.nextSeq]; ok {
			delete(p.pending, p.nextSeq)
			p.nextSeq++
			return obs, nil
		}
		if p.done {
			return engine.FrameObservation{}, p.tailError()
		}

		select {
		case <-ctx.Done():
			return engine.FrameObservation{}, ctx.Err()
		case r, ok := <-p.results:
			if !ok {
				p.done = true
				continue
			}
			p.pending[r.seq] = r.obs
		}
	}
}

// tailError runs only after the results channel closed, which orders it
// after any worker's upErr write.
func (p *pooledSource) tailError() error {
	if p.upErr != nil {
		return p.upErr
	}
	select {
	case err := <-p.readErr:
		return err
	default:
	}
	return io.EOF
}

func (p *pooledSource) Close() error {
	p.cancel()
	p.wg.Wait()
	for range p.results {
	}
	return p.src.Close()
}
