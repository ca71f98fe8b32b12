package service

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"go-musician-booking/modules/notification/entity"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	body string
}

func newTestDispatcher(fail bool) (*SMTPDispatcher, *[]capturedMail) {
	var sent []capturedMail
	d := NewSMTPDispatcher(SMTPConfig{Host: "mail.local", Port: 2525, From: "office@example.com"})
	d.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		if fail {
			return errors.New("connection refused")
		}
		sent = append(sent, capturedMail{addr: addr, from: from, to: to, body: string(msg)})
		return nil
	}
	return d, &sent
}

func TestSMTPDispatcherSendContractEmail(t *testing.T) {
	d, sent := newTestDispatcher(false)

	ok := d.SendContractEmail(context.Background(), entity.ContractEmail{
		To:           "ana@example.com",
		MusicianName: "Ana",
		Subject:      "Your March contract",
		Dates: []entity.EmailDate{
			{Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), Venue: "Blue Room", StartTime: "20:00", EndTime: "23:00", Fee: 30000},
		},
		TotalFee:    30000,
		ResponseURL: "https://example.com/respond?token=abc",
	})
	if !ok {
		t.Fatal("SendContractEmail() = false")
	}
	if len(*sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(*sent))
	}
	m := (*sent)[0]
	if m.addr != "mail.local:2525" || m.to[0] != "ana@example.com" {
		t.Fatalf("unexpected envelope %+v", m)
	}
	for _, want := range []string{"Subject: Your March contract", "2025-03-05", "Blue Room", "300.00", "token=abc"} {
		if !strings.Contains(m.body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestSMTPDispatcherReportsFailure(t *testing.T) {
	d, _ := newTestDispatcher(true)
	if d.SendContractResponseNotification(context.Background(), entity.ContractResponse{To: "office@example.com", Action: "sign"}) {
		t.Fatal("expected false on transport error")
	}

	d, sent := newTestDispatcher(false)
	if d.SendContractResponseNotification(context.Background(), entity.ContractResponse{Action: "sign"}) {
		t.Fatal("expected false without recipient")
	}
	if len(*sent) != 0 {
		t.Fatal("nothing should be sent without recipient")
	}
}

func TestMockDispatcherAlwaysSucceeds(t *testing.T) {
	var d EmailDispatcher = MockDispatcher{}
	if !d.SendContractEmail(context.Background(), entity.ContractEmail{}) {
		t.Fatal("mock send must succeed")
	}
	if !d.SendContractResponseNotification(context.Background(), entity.ContractResponse{}) {
		t.Fatal("mock send must succeed")
	}
}
