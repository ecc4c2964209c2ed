package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/lib/pq"

	"healthdash/internal/domain"
)

// storeErr classifies a driver error as one of the domain store failures.
// Errors it cannot classify, and context errors, are returned unchanged.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if kind := classify(err); kind != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}

func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08":
			return domain.ErrUnavailable
		case pqErr.Code == "57P01", pqErr.Code == "57P02", pqErr.Code == "57P03":
			return domain.ErrUnavailable
		case pqErr.Code == "42501", pqErr.Code.Class() == "28":
			return domain.ErrPermissionDenied
		case pqErr.Code.Class() == "53":
			return domain.ErrQuotaExceeded
		}
		return nil
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.ErrUnexpectedEOF):
		return domain.ErrUnavailable
	}
	return nil
}
