package services

import (
	"context"
	"log"
	"time"

	"topcoop-lending/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ReminderService runs a daily scan for loans that are overdue or due
// within the next few days and logs a repayment reminder for each.
// Notification delivery (mail, SMS) is a separate concern; this service
// only finds the loans and reports them.
type ReminderService struct {
	loanRepo    repositories.LoanRepository
	requestRepo repositories.RequestRepository
	cron        *cron.Cron
}

// DueSoonWindow is how far ahead the reminder scan looks
const DueSoonWindow = 3 * 24 * time.Hour

// NewReminderService creates a new reminder service
func NewReminderService(loanRepo repositories.LoanRepository, requestRepo repositories.RequestRepository) *ReminderService {
	return &ReminderService{
		loanRepo:    loanRepo,
		requestRepo: requestRepo,
		cron:        cron.New(),
	}
}

// Start schedules the daily reminder scan (08:30)
func (s *ReminderService) Start() {
	s.cron.AddFunc("30 8 * * *", func() {
		s.RunScan(context.Background())
	})
	s.cron.Start()
	log.Println("✅ Reminder service started (daily 08:30)")
}

// Stop stops the cron scheduler
func (s *ReminderService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Reminder service stopped")
}

// RunScan finds unpaid loans due before now+window and logs reminders.
// Returns the number of loans flagged.
func (s *ReminderService) RunScan(ctx context.Context) int {
	cutoff := time.Now().Add(DueSoonWindow)

	loans, err := s.loanRepo.ListUnpaidDueBefore(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Reminder scan failed: %v", err)
		return 0
	}

	now := time.Now()
	for _, loan := range loans {
		request, err := s.requestRepo.GetByID(ctx, loan.RequestID)
		if err != nil {
			log.Printf("⚠️ Reminder: loan %d has no parent request: %v", loan.ID, err)
			continue
		}

		if loan.DueDate.Before(now) {
			log.Printf("⏰ Loan %d (user %d) is OVERDUE since %s", loan.ID, request.UserID, loan.DueDate.Format("2006-01-02"))
		} else {
			log.Printf("⏰ Loan %d (user %d) is due %s", loan.ID, request.UserID, loan.DueDate.Format("2006-01-02"))
		}
	}

	return len(loans)
}
