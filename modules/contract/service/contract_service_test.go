package service

import (
	"context"
	stderrors "errors"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"go-musician-booking/core/errors"
	activityEntity "go-musician-booking/modules/activity/entity"
	activityRepo "go-musician-booking/modules/activity/repository"
	availabilityService "go-musician-booking/modules/availability/service"
	"go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

func TestSendDispatchesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "ana")
	m := h.monthly(t, musicianID, 15000, day(3), day(10))

	first, err := h.contracts.Send(ctx, m.ID, "staff")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if first.Skipped || !first.EmailSent || first.Status != entity.ContractStatusSent {
		t.Fatalf("first Send() = %+v", first)
	}

	second, err := h.contracts.Send(ctx, m.ID, "staff")
	if err != nil {
		t.Fatalf("second Send() error = %v", err)
	}
	if !second.Skipped || second.Status != entity.ContractStatusSent {
		t.Fatalf("second Send() = %+v, want skipped", second)
	}
	if second.SentAt == nil || !second.SentAt.Equal(*first.SentAt) {
		t.Errorf("sent_at changed: %v -> %v", first.SentAt, second.SentAt)
	}
	if got := h.mailer.sent(); got != 1 {
		t.Errorf("emails sent = %d, want 1", got)
	}
	if !strings.Contains(h.mailer.contracts[0].ResponseURL, "token=") {
		t.Errorf("response url %q has no token", h.mailer.contracts[0].ResponseURL)
	}

	for _, d := range []int{3, 10} {
		if h.available(t, musicianID, day(d)) {
			t.Errorf("day %d still available after send", d)
		}
	}
	dates, _ := h.contractRepo.ListDates(ctx, m.ID)
	for _, d := range dates {
		if d.Status != entity.DateStatusSent {
			t.Errorf("date %s status = %s, want sent", d.Date, d.Status)
		}
	}
}

func TestRespondTakesEffectOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "ben")
	m := h.monthly(t, musicianID, 20000, day(5))
	if _, err := h.contracts.Send(ctx, m.ID, "staff"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	signed, err := h.contracts.Respond(ctx, RespondInput{Token: m.Token, Action: ActionSign, IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Respond(sign) error = %v", err)
	}
	if signed.Status != entity.ContractStatusSigned || signed.RespondedAt == nil || signed.SignatureHash == nil {
		t.Fatalf("Respond(sign) = %+v", signed)
	}
	if signed.IPAddress == nil || *signed.IPAddress != "10.0.0.1" {
		t.Errorf("ip address = %v", signed.IPAddress)
	}
	respondedAt := *signed.RespondedAt

	_, err = h.contracts.Respond(ctx, RespondInput{Token: m.Token, Action: ActionReject, IPAddress: "10.0.0.1"})
	if !errors.Is(err, errors.InvalidStateError) {
		t.Fatalf("Respond(reject) error = %v, want invalid state", err)
	}

	current, err := h.contractRepo.GetMusician(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMusician() error = %v", err)
	}
	if current.Status != entity.ContractStatusSigned {
		t.Errorf("status = %s, want signed", current.Status)
	}
	if !current.RespondedAt.Equal(respondedAt) {
		t.Errorf("responded_at moved from %v to %v", respondedAt, *current.RespondedAt)
	}
	if h.available(t, musicianID, day(5)) {
		t.Error("day 5 available after signing")
	}

	if len(h.artifacts.keys) != 1 || !strings.HasPrefix(h.artifacts.keys[0], "signatures/") {
		t.Errorf("artifact keys = %v", h.artifacts.keys)
	}
	if len(h.mailer.responses) != 1 || h.mailer.responses[0].Action != ActionSign {
		t.Errorf("staff notifications = %+v", h.mailer.responses)
	}
	unread, err := h.notifications.CountUnread(ctx, h.staff)
	if err != nil || unread != 1 {
		t.Errorf("CountUnread() = %d, %v; want 1", unread, err)
	}
}

func TestRespondConcurrentSingleWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.monthly(t, h.musician(t, "cy"), 1000, day(7))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		action := ActionSign
		if i%2 == 1 {
			action = ActionReject
		}
		wg.Add(1)
		go func(action string) {
			defer wg.Done()
			_, err := h.contracts.Respond(ctx, RespondInput{Token: m.Token, Action: action})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, errors.InvalidStateError) {
				t.Errorf("Respond() error = %v", err)
			}
		}(action)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("successful responses = %d, want 1", wins)
	}
}

func TestRespondValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.monthly(t, h.musician(t, "dee"), 1000, day(8))
	other := uuid.New()

	tests := []struct {
		name string
		in   RespondInput
		want *errors.AppError
	}{
		{"empty token", RespondInput{Action: ActionSign}, errors.ValidationError},
		{"bad action", RespondInput{Token: m.Token, Action: "maybe"}, errors.ValidationError},
		{"unknown token", RespondInput{Token: "nope", Action: ActionSign}, errors.NotFound},
		{"wrong contract", RespondInput{Token: m.Token, ContractID: &other, Action: ActionSign}, errors.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.contracts.Respond(ctx, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("Respond() error = %v, want %s", err, tt.want.Code)
			}
		})
	}
}

func TestRejectKeepsDateHeldByOtherContract(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "eve")

	a := h.monthly(t, musicianID, 1000, day(12))
	b := h.monthly(t, musicianID, 1000, day(12))
	if _, err := h.contracts.Send(ctx, a.ID, "staff"); err != nil {
		t.Fatalf("Send(a) error = %v", err)
	}
	if _, err := h.contracts.Respond(ctx, RespondInput{Token: a.Token, Action: ActionSign}); err != nil {
		t.Fatalf("Respond(a) error = %v", err)
	}
	if _, err := h.contracts.Send(ctx, b.ID, "staff"); err != nil {
		t.Fatalf("Send(b) error = %v", err)
	}
	if _, err := h.contracts.Respond(ctx, RespondInput{Token: b.Token, Action: ActionReject}); err != nil {
		t.Fatalf("Respond(b) error = %v", err)
	}

	if h.available(t, musicianID, day(12)) {
		t.Error("day 12 released while another contract is signed")
	}
}

func TestRejectPendingLeavesLedger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "fin")
	a := h.monthly(t, musicianID, 1000, day(14))
	b := h.monthly(t, musicianID, 1000, day(14))

	if _, err := h.contracts.Send(ctx, a.ID, "staff"); err != nil {
		t.Fatalf("Send(a) error = %v", err)
	}
	if _, err := h.contracts.Respond(ctx, RespondInput{Token: b.Token, Action: ActionReject}); err != nil {
		t.Fatalf("Respond(b) error = %v", err)
	}
	if h.available(t, musicianID, day(14)) {
		t.Error("rejecting a pending contract released the date")
	}
}

func TestCancelReleasesDates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "gus")
	m := h.monthly(t, musicianID, 1000, day(20), day(21))
	if _, err := h.contracts.Send(ctx, m.ID, "staff"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	cancelled, err := h.contracts.Cancel(ctx, m.ID, "staff", "venue closed")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Status != entity.ContractStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.Metadata.Contract == nil || cancelled.Metadata.Contract.Reason != "venue closed" {
		t.Errorf("metadata = %+v", cancelled.Metadata)
	}
	for _, d := range []int{20, 21} {
		if !h.available(t, musicianID, day(d)) {
			t.Errorf("day %d not released", d)
		}
	}

	if _, err := h.contracts.Cancel(ctx, m.ID, "staff", ""); !errors.Is(err, errors.InvalidStateError) {
		t.Errorf("second Cancel() error = %v, want invalid state", err)
	}
	if _, err := h.contracts.Respond(ctx, RespondInput{Token: m.Token, Action: ActionSign}); !errors.Is(err, errors.InvalidStateError) {
		t.Errorf("Respond() after cancel error = %v, want invalid state", err)
	}
}

func TestViewByTokenAggregates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.monthly(t, h.musician(t, "hal"), 2500, day(1), day(2))

	view, err := h.contracts.ViewByToken(ctx, m.Token, nil)
	if err != nil {
		t.Fatalf("ViewByToken() error = %v", err)
	}
	if view.TotalAmount != 5000 || len(view.Dates) != 2 {
		t.Errorf("view = %+v", view)
	}
	if view.AggregateStatus != entity.DateStatusPending {
		t.Errorf("aggregate = %s, want pending", view.AggregateStatus)
	}
	if view.TermsAndConditions != "Standard terms" {
		t.Errorf("terms = %q", view.TermsAndConditions)
	}
	if _, err := h.contracts.ViewByToken(ctx, "missing", nil); !errors.Is(err, errors.NotFound) {
		t.Errorf("ViewByToken(missing) error = %v", err)
	}
}

func TestGenerateRejectsDuplicateAndUnknownMusician(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "ivy")
	m := h.monthly(t, musicianID, 1000, day(4))

	entries := []DateEntry{{Date: day(4), Fee: 1000}}
	_, err := h.contracts.Generate(ctx, GenerateInput{ContractID: m.ContractID, MusicianID: musicianID, Dates: entries})
	if errors.CodeOf(err) != errors.ErrAlreadyExists {
		t.Errorf("Generate(duplicate) error = %v", err)
	}
	_, err = h.contracts.Generate(ctx, GenerateInput{ContractID: m.ContractID, MusicianID: uuid.New(), Dates: entries})
	if !errors.Is(err, errors.ValidationError) {
		t.Errorf("Generate(unknown musician) error = %v", err)
	}
	_, err = h.contracts.Generate(ctx, GenerateInput{ContractID: uuid.New(), MusicianID: musicianID, Dates: entries})
	if !errors.Is(err, errors.NotFound) {
		t.Errorf("Generate(unknown contract) error = %v", err)
	}
}

// TestAvailabilityFollowsClaims drives random transitions across monthly
// contracts and contract links for one musician and date, checking after
// each step that the date is blocked exactly when some commitment is sent
// or signed.
func TestAvailabilityFollowsClaims(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		h := newHarness(t)
		ctx := context.Background()
		rnd := rand.New(rand.NewSource(seed))
		musicianID := h.musician(t, "jo")
		date := day(18)

		type owner struct {
			monthly *entity.MonthlyContractMusician
			link    *entity.ContractLink
		}
		var owners []owner
		for i := 0; i < 3; i++ {
			owners = append(owners, owner{monthly: h.monthly(t, musicianID, 1000, date)})
		}
		for i := 0; i < 2; i++ {
			owners = append(owners, owner{link: h.link(t, musicianID, date)})
		}

		status := func(o owner) entity.ContractStatus {
			if o.monthly != nil {
				m, _ := h.contractRepo.GetMusician(ctx, o.monthly.ID)
				return m.Status
			}
			l, _ := h.linkRepo.GetByID(ctx, o.link.ID)
			return l.Status
		}

		for step := 0; step < 30; step++ {
			o := owners[rnd.Intn(len(owners))]
			op := rnd.Intn(4)
			switch {
			case o.monthly != nil && op == 0:
				_, _ = h.contracts.Send(ctx, o.monthly.ID, "staff")
			case o.monthly != nil && op == 1:
				_, _ = h.contracts.Respond(ctx, RespondInput{Token: o.monthly.Token, Action: ActionSign})
			case o.monthly != nil && op == 2:
				_, _ = h.contracts.Respond(ctx, RespondInput{Token: o.monthly.Token, Action: ActionReject})
			case o.monthly != nil:
				_, _ = h.contracts.Cancel(ctx, o.monthly.ID, "staff", "")
			case op == 0:
				_, _ = h.links.SendLink(ctx, o.link.ID, "staff")
			case op == 1:
				_, _ = h.links.RespondLink(ctx, RespondInput{Token: o.link.Token, Action: ActionSign})
			case op == 2:
				_, _ = h.links.RespondLink(ctx, RespondInput{Token: o.link.Token, Action: ActionReject})
			default:
				_, _ = h.links.CancelLink(ctx, o.link.ID, "staff", "")
			}

			claimed := false
			for _, o := range owners {
				s := status(o)
				if s == entity.ContractStatusSent || s == entity.ContractStatusSigned {
					claimed = true
				}
			}
			if got := h.available(t, musicianID, date); got == claimed {
				t.Fatalf("seed %d step %d: available = %v with claimed = %v", seed, step, got, claimed)
			}
		}
	}
}

func TestDetailListsMusicians(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.monthly(t, h.musician(t, "kit"), 1000, day(9))

	detail, err := h.contracts.Detail(ctx, m.ContractID)
	if err != nil {
		t.Fatalf("Detail() error = %v", err)
	}
	if len(detail.Musicians) != 1 || len(detail.Musicians[0].Dates) != 1 {
		t.Errorf("detail = %+v", detail)
	}
	if _, err := h.contracts.Detail(ctx, uuid.New()); !errors.Is(err, errors.NotFound) {
		t.Errorf("Detail(unknown) error = %v", err)
	}
}

func TestSendSurvivesMailerOutage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mailer.down = true
	musicianID := h.musician(t, "ivy")
	m := h.monthly(t, musicianID, 5000, day(8))

	res, err := h.contracts.Send(ctx, m.ID, "staff")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if res.Skipped || res.Status != entity.ContractStatusSent || res.EmailSent {
		t.Fatalf("Send() = %+v, want sent without email", res)
	}

	stored, err := h.contractRepo.GetMusician(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMusician() error = %v", err)
	}
	if stored.Status != entity.ContractStatusSent || stored.SentAt == nil {
		t.Errorf("stored = %s sent_at %v, want sent", stored.Status, stored.SentAt)
	}
	if h.available(t, musicianID, day(8)) {
		t.Error("day 8 not held after send")
	}

	parked, err := h.deadLetters.ListUnresolved(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnresolved() error = %v", err)
	}
	if len(parked) != 1 || parked[0].Step != StepContractEmail {
		t.Errorf("dead letters = %+v, want one %s", parked, StepContractEmail)
	}
}

type brokenActivityRepository struct {
	activityRepo.ActivityRepository
}

func (brokenActivityRepository) Append(ctx context.Context, a *activityEntity.Activity) error {
	return stderrors.New("activities: relation is read-only")
}

func TestTransitionsSurviveActivityFailure(t *testing.T) {
	h := newHarness(t, withActivityRepository(brokenActivityRepository{activityRepo.NewMemoryActivityRepository()}))
	ctx := context.Background()
	musicianID := h.musician(t, "jay")
	m := h.monthly(t, musicianID, 5000, day(9))

	if _, err := h.contracts.Send(ctx, m.ID, "staff"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	signed, err := h.contracts.Respond(ctx, RespondInput{Token: m.Token, Action: ActionSign})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if signed.Status != entity.ContractStatusSigned {
		t.Errorf("status = %s, want signed", signed.Status)
	}
	if h.available(t, musicianID, day(9)) {
		t.Error("day 9 not blocked after sign")
	}

	parked, err := h.deadLetters.ListUnresolved(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnresolved() error = %v", err)
	}
	if len(parked) != 0 {
		t.Errorf("dead letters = %+v, want none", parked)
	}
}

func TestManualOpenRefusedWhileContractSigned(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "max")
	m := h.monthly(t, musicianID, 5000, day(10))
	if _, err := h.contracts.Send(ctx, m.ID, "staff"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, err := h.contracts.Respond(ctx, RespondInput{Token: m.Token, Action: ActionSign}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	ledger := availabilityService.NewAvailabilityService(h.ledger, h.tx, h.activity)
	ledger.AddClaimSource(h.bookings)
	ledger.AddClaimSource(h.contractRepo)
	ledger.AddClaimSource(h.linkRepo)

	if err := ledger.Set(ctx, musicianID, day(10), true, "", "staff"); !errors.Is(err, errors.InvalidStateError) {
		t.Fatalf("Set(true) error = %v, want invalid state", err)
	}
	if h.available(t, musicianID, day(10)) {
		t.Error("signed date opened by hand")
	}

	if _, err := h.contracts.Cancel(ctx, m.ID, "staff", "gig moved"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := ledger.Set(ctx, musicianID, day(10), true, "", "staff"); err != nil {
		t.Errorf("Set(true) after cancel error = %v", err)
	}
}
