// Package formation builds the day's trios.
//
// A run walks five stages in order and stops at the first one that ends it:
//
//  1. idempotency guard: trios already exist for the date
//  2. eligibility: load candidates and drop anyone under MinimumAge
//  3. partition: shuffle and slice into groups of 3, remainder to the last
//  4. persist: one atomic batch insert for the date
//  5. hooks: expired content cleanup, then group notifications
//
// Hook failures are logged and never change the outcome of a run.
package formation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dalemusser/rantrio/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome names how a run ended.
type Outcome string

const (
	OutcomeFormed            Outcome = "formed"
	OutcomeAlreadyFormed     Outcome = "already_formed"
	OutcomeNotEnoughUsers    Outcome = "not_enough_users"
	OutcomeNotEnoughEligible Outcome = "not_enough_eligible_users"
	OutcomeError             Outcome = "error"
)

// Outcomes lists every Outcome a run can report.
var Outcomes = []Outcome{
	OutcomeFormed,
	OutcomeAlreadyFormed,
	OutcomeNotEnoughUsers,
	OutcomeNotEnoughEligible,
	OutcomeError,
}

// Post-formation hook names, as passed to Recorder.HookFailed.
const (
	HookCleanup = "cleanup"
	HookNotify  = "notify"
)

// ErrBatchExists is returned by a GroupStore when another run already
// persisted trios for the date. The run reports OutcomeAlreadyFormed.
var ErrBatchExists = errors.New("trios already formed for this date")

// CandidateSource lists everyone who could be placed in a trio.
type CandidateSource interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
}

// GroupStore checks for and writes a date's trios.
// InsertBatch must write all groups or none.
type GroupStore interface {
	ExistsForDate(ctx context.Context, date string) (bool, error)
	InsertBatch(ctx context.Context, batchID, date string, groups [][]string) ([]models.Trio, error)
}

// ContentCleaner removes posts and replies past their expiry.
type ContentCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// GroupNotice describes one newly formed trio for notification.
type GroupNotice struct {
	GroupID     string   `json:"group_id"`
	MemberIDs   []string `json:"member_ids"`
	MemberCount int      `json:"member_count"`
	Date        string   `json:"date"`
}

// Notifier tells a trio's members they have been grouped.
type Notifier interface {
	NotifyGroup(ctx context.Context, n GroupNotice) error
}

// Recorder receives run measurements. All methods must be safe to call
// from concurrent runs.
type Recorder interface {
	RunFinished(outcome Outcome, groups int, elapsed time.Duration)
	HookFailed(hook string)
}

// Result is what a run reports back to its caller.
type Result struct {
	Outcome       Outcome
	GroupsCreated int
	Date          string
	BatchID       string
}

// Config carries the tunables of a Former. Zero values pick defaults.
type Config struct {
	MinimumAge int
	Location   *time.Location
	Remainder  RemainderPolicy
	Now        func() time.Time
	Rand       *rand.Rand
}

// Former runs trio formation against its collaborators.
type Former struct {
	candidates CandidateSource
	groups     GroupStore
	cleaner    ContentCleaner
	notifier   Notifier
	recorder   Recorder
	log        *zap.Logger

	minAge    int
	loc       *time.Location
	remainder RemainderPolicy
	now       func() time.Time
	rng       *rand.Rand
}

// New constructs a Former. cleaner, notifier and recorder may be nil.
func New(candidates CandidateSource, groups GroupStore, cleaner ContentCleaner, notifier Notifier, recorder Recorder, cfg Config, logger *zap.Logger) *Former {
	f := &Former{
		candidates: candidates,
		groups:     groups,
		cleaner:    cleaner,
		notifier:   notifier,
		recorder:   recorder,
		log:        logger,
		minAge:     cfg.MinimumAge,
		loc:        cfg.Location,
		remainder:  cfg.Remainder,
		now:        cfg.Now,
		rng:        cfg.Rand,
	}
	if f.minAge <= 0 {
		f.minAge = MinimumAge
	}
	if f.loc == nil {
		f.loc = time.UTC
	}
	if f.remainder == nil {
		f.remainder = AbsorbIntoLast
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// Run forms the trios for today. A non-nil error means the run failed
// before any trio was stored; every other way a run can end is a Result.
func (f *Former) Run(ctx context.Context) (res Result, err error) {
	start := time.Now()
	today := f.now().In(f.loc)
	date := today.Format(time.DateOnly)
	res = Result{Date: date}

	defer func() {
		if f.recorder == nil {
			return
		}
		outcome := res.Outcome
		if err != nil {
			outcome = OutcomeError
		}
		f.recorder.RunFinished(outcome, res.GroupsCreated, time.Since(start))
	}()

	log := f.log.With(zap.String("date", date))
	log.Info("starting trio formation")

	exists, err := f.groups.ExistsForDate(ctx, date)
	if err != nil {
		log.Error("checking existing trios failed", zap.Error(err))
		return res, fmt.Errorf("check existing trios: %w", err)
	}
	if exists {
		log.Info("trios already exist for date, skipping")
		res.Outcome = OutcomeAlreadyFormed
		return res, nil
	}

	cands, err := f.candidates.ListCandidates(ctx)
	if err != nil {
		log.Error("loading candidates failed", zap.Error(err))
		return res, fmt.Errorf("list candidates: %w", err)
	}
	if len(cands) < GroupSize {
		log.Info("not enough users to form trios", zap.Int("users", len(cands)))
		res.Outcome = OutcomeNotEnoughUsers
		return res, nil
	}

	eligible := FilterEligible(cands, today, f.minAge, log)
	log.Info("filtered candidates",
		zap.Int("users", len(cands)),
		zap.Int("eligible", len(eligible)),
		zap.Int("minimum_age", f.minAge))
	if len(eligible) < GroupSize {
		log.Info("not enough eligible users to form trios")
		res.Outcome = OutcomeNotEnoughEligible
		return res, nil
	}

	ids := make([]string, len(eligible))
	for i, c := range eligible {
		ids[i] = c.UserID
	}
	Shuffle(f.rng, ids)
	groups := Partition(ids, GroupSize, f.remainder)

	batchID := uuid.NewString()
	trios, err := f.groups.InsertBatch(ctx, batchID, date, groups)
	if errors.Is(err, ErrBatchExists) {
		log.Info("another run formed trios for date first, skipping")
		res.Outcome = OutcomeAlreadyFormed
		return res, nil
	}
	if err != nil {
		log.Error("inserting trios failed", zap.Error(err))
		return res, fmt.Errorf("insert trios: %w", err)
	}

	res.Outcome = OutcomeFormed
	res.GroupsCreated = len(trios)
	res.BatchID = batchID
	log.Info("trios created",
		zap.Int("trios", len(trios)),
		zap.String("batch_id", batchID))

	f.runHooks(ctx, log, trios)
	return res, nil
}

// runHooks runs cleanup then notification. Neither can fail the run.
func (f *Former) runHooks(ctx context.Context, log *zap.Logger, trios []models.Trio) {
	if f.cleaner != nil {
		removed, err := f.cleaner.CleanupExpired(ctx)
		if err != nil {
			log.Error("cleaning up expired content failed", zap.Error(err))
			f.hookFailed(HookCleanup)
		} else {
			log.Info("cleaned up expired content", zap.Int64("removed", removed))
		}
	}

	if f.notifier != nil {
		var errs []error
		for _, t := range trios {
			n := GroupNotice{
				GroupID:     t.ID.Hex(),
				MemberIDs:   t.MemberIDs,
				MemberCount: len(t.MemberIDs),
				Date:        t.Date,
			}
			if err := f.notifier.NotifyGroup(ctx, n); err != nil {
				errs = append(errs, fmt.Errorf("trio %s: %w", n.GroupID, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			log.Error("sending trio notifications failed",
				zap.Int("failed", len(errs)),
				zap.Int("trios", len(trios)),
				zap.Error(err))
			f.hookFailed(HookNotify)
		}
	}
}

func (f *Former) hookFailed(hook string) {
	if f.recorder != nil {
		f.recorder.HookFailed(hook)
	}
}
