// Package sweeper runs the background maintenance jobs: cancelling
// unpaid bookings whose payment window lapsed, completing bookings
// whose play date has passed, and purging dead refresh tokens.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	q "github.com/turftown/turf-booking/internal/queue"
	"github.com/turftown/turf-booking/internal/repository"
	queue_publisher "github.com/turftown/turf-booking/internal/service"
)

// Sweeper schedules the maintenance jobs on a cron runner.
type Sweeper struct {
	cron       *cron.Cron
	bookings   *repository.BookingRepo
	tokens     *repository.TokenRepo
	pendingTTL time.Duration
}

// New creates a Sweeper.  pendingTTLMin is how long an unpaid PENDING
// booking holds its slots before the sweep releases them.
func New(bookings *repository.BookingRepo, tokens *repository.TokenRepo, pendingTTLMin int) *Sweeper {
	return &Sweeper{
		cron:       cron.New(),
		bookings:   bookings,
		tokens:     tokens,
		pendingTTL: time.Duration(pendingTTLMin) * time.Minute,
	}
}

// Start registers the jobs and starts the runner.
func (s *Sweeper) Start() {
	log.Println("Starting booking sweeper...")

	// Release slots held by unpaid bookings every minute.  The expiry
	// runs server-side so abandoned checkouts free their slots even
	// when the client never comes back.
	s.cron.AddFunc("@every 1m", func() {
		s.expirePendingBookings()
	})

	// Housekeeping can run coarser.
	s.cron.AddFunc("@every 1h", func() {
		s.completePastBookings()
		s.purgeExpiredTokens()
	})

	s.cron.Start()
	log.Println("Booking sweeper started")
}

// Stop gracefully shuts down the runner, waiting for running jobs.
func (s *Sweeper) Stop() {
	log.Println("Stopping booking sweeper...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Booking sweeper stopped")
}

// expirePendingBookings cancels PENDING bookings older than the
// payment window and announces each cancellation.
func (s *Sweeper) expirePendingBookings() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-s.pendingTTL)
	ids, err := s.bookings.ExpirePending(ctx, cutoff)
	if err != nil {
		log.Printf("sweeper: expire pending bookings failed: %v", err)
		return
	}
	for _, id := range ids {
		log.Printf("sweeper: expired unpaid booking %d", id)
		b, err := s.bookings.GetForUpdate(ctx, id)
		if err != nil {
			continue
		}
		_ = queue_publisher.PublishBookingCancelled(ctx, q.BookingCancelledEvent{
			BookingID:   b.ID,
			TurfID:      b.TurfID,
			PlayDate:    b.PlayDate,
			Reason:      "expired",
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// completePastBookings settles CONFIRMED bookings whose play date is
// over.
func (s *Sweeper) completePastBookings() {
	ctx := context.Background()
	today := time.Now().UTC().Format("2006-01-02")
	n, err := s.bookings.CompletePast(ctx, today)
	if err != nil {
		log.Printf("sweeper: complete past bookings failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("sweeper: completed %d past bookings", n)
	}
}

// purgeExpiredTokens trims refresh tokens that expired over a week
// ago; anything younger stays visible for audit.
func (s *Sweeper) purgeExpiredTokens() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	n, err := s.tokens.PurgeExpired(ctx, cutoff)
	if err != nil {
		log.Printf("sweeper: purge refresh tokens failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("sweeper: purged %d expired refresh tokens", n)
	}
}
