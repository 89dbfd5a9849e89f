package tablefsm

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParseAll parses each frame independently and concurrently, running at most
// limit parses at once (no limit if limit <= 0). Each frame must end with the
// byte that drives m into its terminal state.
//
// out[i] holds the output of frames[i]. The first failure cancels the
// remaining frames and is returned as a *FrameError, or as ctx's error if
// ctx ended first.
func ParseAll(ctx context.Context, m FSM, frames [][]byte, limit int) ([][]byte, error) {
	out := make([][]byte, len(frames))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, frame := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			dst := make([]byte, len(frame))
			n, err := m.Parse(frame, dst)
			if err != nil {
				return &FrameError{Index: int64(i), Err: err}
			}
			out[i] = dst[:n]
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
