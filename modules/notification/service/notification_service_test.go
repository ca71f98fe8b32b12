package service

import (
	"context"
	"testing"

	"go-musician-booking/core/params"
	"go-musician-booking/modules/notification/dto"
	"go-musician-booking/modules/notification/entity"
	"go-musician-booking/modules/notification/repository"

	"github.com/google/uuid"
)

func TestInboxFilterAndMarkRead(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(repository.NewMemoryNotificationRepository())
	staff, other := uuid.New(), uuid.New()

	for _, typ := range []string{entity.TypeContractSigned, entity.TypeContractRejected, entity.TypeInvitationReply} {
		if err := svc.Create(ctx, &dto.CreateNotificationRequest{UserID: staff, Type: typ, Title: typ}); err != nil {
			t.Fatalf("Create(%s) error = %v", typ, err)
		}
	}
	if err := svc.Create(ctx, &dto.CreateNotificationRequest{UserID: other, Type: entity.TypeContractSigned}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	page := params.QueryParams{PageNumber: 1, PageSize: 10}
	signed, err := svc.Inbox(ctx, staff, entity.InboxFilter{Type: entity.TypeContractSigned}, page)
	if err != nil || signed.TotalItems != 1 {
		t.Fatalf("Inbox(signed) = %+v, %v; want 1 item", signed, err)
	}

	updated, err := svc.MarkAsRead(ctx, staff, []uuid.UUID{signed.Items[0].ID})
	if err != nil || updated != 1 {
		t.Fatalf("MarkAsRead() = %d, %v; want 1", updated, err)
	}
	if again, _ := svc.MarkAsRead(ctx, staff, []uuid.UUID{signed.Items[0].ID}); again != 0 {
		t.Errorf("second MarkAsRead() = %d, want 0", again)
	}

	unread, _ := svc.Inbox(ctx, staff, entity.InboxFilter{UnreadOnly: true}, page)
	if unread.TotalItems != 2 {
		t.Errorf("unread items = %d, want 2", unread.TotalItems)
	}

	all, _ := svc.MarkAsRead(ctx, staff, nil)
	if all != 2 {
		t.Errorf("MarkAsRead(all) = %d, want 2", all)
	}
	if n, _ := svc.CountUnread(ctx, other); n != 1 {
		t.Errorf("other user's unread = %d, want 1", n)
	}
}

func TestCreateRequiresRecipient(t *testing.T) {
	svc := NewNotificationService(repository.NewMemoryNotificationRepository())
	if err := svc.Create(context.Background(), &dto.CreateNotificationRequest{Type: entity.TypeInvitation}); err == nil {
		t.Fatal("Create() without user_id succeeded")
	}
}
