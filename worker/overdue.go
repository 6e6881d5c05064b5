package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/store"
)

// OverdueSweeper periodically scans for active loans past their due date.
// Overdue loans stay active, members simply lose read access, so the sweep
// only reports what it finds for the admins.
type OverdueSweeper struct {
	store *store.Store
}

func NewOverdueSweeper(store *store.Store) *OverdueSweeper {
	return &OverdueSweeper{store: store}
}

func (s *OverdueSweeper) Run(ctx context.Context) {
	interval := time.Duration(config.Opts.OverdueSweepInterval) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debug("Overdue sweeper is running", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *OverdueSweeper) sweep() {
	today := time.Now().Format("2006-01-02")
	loans, err := s.store.ListOverdueLoans(today)
	if err != nil {
		log.Error("Error listing overdue loans", zap.Error(err))
		return
	}

	for _, loan := range loans {
		log.Info("Loan is overdue",
			zap.Int32("loan_id", loan.ID),
			zap.Int32("book_id", loan.BookID),
			zap.Int32("member_id", loan.MemberID),
			zap.String("due_date", loan.DueDate))
	}
}
