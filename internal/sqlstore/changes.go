package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Changes polls PRAGMA data_version every interval and signals when another
// connection, in this or another process, has committed to the database.
// Signals are coalesced. The channel is closed once ctx is done.
func (s *Store) Changes(ctx context.Context, interval time.Duration) (<-chan struct{}, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid poll interval: %s", interval)
	}

	// data_version is per connection, so the same one must be asked every time
	conn, err := s.reader.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("pin watch connection: %w", err)
	}
	last, err := dataVersion(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer conn.Close()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			v, err := dataVersion(ctx, conn)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.WithError(err).Warn("Failed to poll database version")
				continue
			}
			if v == last {
				continue
			}
			last = v
			s.logger.Debug("Database changed by another connection")
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	if err := conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read data_version: %w", err)
	}
	return v, nil
}
