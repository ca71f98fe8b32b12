package service

import (
	"context"
	"testing"

	"go-musician-booking/core/errors"
	bookingEntity "go-musician-booking/modules/booking/entity"
	"go-musician-booking/modules/contract/entity"
)

func TestLinkSignConfirmsBooking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "lou")
	l := h.link(t, musicianID, day(22))

	if _, err := h.links.CreateLink(ctx, l.BookingID, "staff"); errors.CodeOf(err) != errors.ErrAlreadyExists {
		t.Errorf("second CreateLink() error = %v, want already exists", err)
	}

	sent, err := h.links.SendLink(ctx, l.ID, "staff")
	if err != nil || sent.Skipped {
		t.Fatalf("SendLink() = %+v, %v", sent, err)
	}
	if again, _ := h.links.SendLink(ctx, l.ID, "staff"); !again.Skipped {
		t.Error("second SendLink() was not skipped")
	}
	if got := h.mailer.sent(); got != 1 {
		t.Errorf("emails sent = %d, want 1", got)
	}
	if h.available(t, musicianID, day(22)) {
		t.Error("date available after link sent")
	}

	signed, err := h.links.RespondLink(ctx, RespondInput{Token: l.Token, Action: ActionSign, IPAddress: "192.0.2.4"})
	if err != nil {
		t.Fatalf("RespondLink() error = %v", err)
	}
	if signed.Status != entity.ContractStatusSigned || signed.SignatureHash == nil {
		t.Errorf("link = %+v", signed)
	}

	b, err := h.bookings.GetByID(ctx, l.BookingID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !b.ContractSigned || b.Status != bookingEntity.BookingStatusConfirmed {
		t.Errorf("booking = %+v, want confirmed and signed", b)
	}
	if b.Metadata.Booking == nil || b.Metadata.Booking.LinkID != l.ID {
		t.Errorf("booking metadata = %+v", b.Metadata)
	}

	if _, err := h.links.CancelLink(ctx, l.ID, "staff", ""); !errors.Is(err, errors.InvalidStateError) {
		t.Errorf("CancelLink() after sign error = %v, want invalid state", err)
	}
	if _, err := h.links.CreateLink(ctx, l.BookingID, "staff"); errors.CodeOf(err) != errors.ErrAlreadyExists {
		t.Errorf("CreateLink() after sign error = %v, want already exists", err)
	}
}

func TestLinkRejectCancelsBookingAndReleases(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "max")
	l := h.link(t, musicianID, day(23))
	if _, err := h.links.SendLink(ctx, l.ID, "staff"); err != nil {
		t.Fatalf("SendLink() error = %v", err)
	}

	if _, err := h.links.RespondLink(ctx, RespondInput{Token: l.Token, Action: ActionReject, Comments: "double booked"}); err != nil {
		t.Fatalf("RespondLink() error = %v", err)
	}
	b, _ := h.bookings.GetByID(ctx, l.BookingID)
	if b.Status != bookingEntity.BookingStatusCancelled {
		t.Errorf("booking status = %s, want cancelled", b.Status)
	}
	if !h.available(t, musicianID, day(23)) {
		t.Error("date not released after reject")
	}
	if _, err := h.links.CreateLink(ctx, l.BookingID, "staff"); !errors.Is(err, errors.InvalidStateError) {
		t.Errorf("CreateLink() on cancelled booking error = %v", err)
	}
}

func TestLinkCancelKeepsMonthlyHold(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	musicianID := h.musician(t, "nia")

	m := h.monthly(t, musicianID, 1000, day(24))
	if _, err := h.contracts.Send(ctx, m.ID, "staff"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	l := h.link(t, musicianID, day(24))
	if _, err := h.links.SendLink(ctx, l.ID, "staff"); err != nil {
		t.Fatalf("SendLink() error = %v", err)
	}

	cancelled, err := h.links.CancelLink(ctx, l.ID, "staff", "moved")
	if err != nil {
		t.Fatalf("CancelLink() error = %v", err)
	}
	if cancelled.Status != entity.ContractStatusCancelled {
		t.Errorf("status = %s", cancelled.Status)
	}
	if h.available(t, musicianID, day(24)) {
		t.Error("date released while the monthly contract still holds it")
	}
	b, _ := h.bookings.GetByID(ctx, l.BookingID)
	if b.Status != bookingEntity.BookingStatusCancelled {
		t.Errorf("booking status = %s, want cancelled", b.Status)
	}
}

func TestLinkViewByToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	l := h.link(t, h.musician(t, "oz"), day(25))

	view, err := h.links.ViewByToken(ctx, l.Token)
	if err != nil {
		t.Fatalf("ViewByToken() error = %v", err)
	}
	if view.ID != l.ID || view.Fee != 30000 {
		t.Errorf("view = %+v", view)
	}
	if _, err := h.links.ViewByToken(ctx, ""); !errors.Is(err, errors.ValidationError) {
		t.Errorf("ViewByToken(\"\") error = %v", err)
	}
}
