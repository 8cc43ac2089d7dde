package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domorder "example.com/storefront/internal/domain/order"
)

func at(day int) time.Time {
	return time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC)
}

func TestList_NewestFirstPerUser(t *testing.T) {
	svc := NewService()
	svc.Record(&domorder.Order{ID: "o1", UserID: "u1", CreatedAt: at(1)})
	svc.Record(&domorder.Order{ID: "o2", UserID: "u2", CreatedAt: at(2)})
	svc.Record(&domorder.Order{ID: "o3", UserID: "u1", CreatedAt: at(5)})
	svc.Record(&domorder.Order{ID: "o4", UserID: "u1", CreatedAt: at(3)})
	svc.Record(nil)

	var ids []string
	for _, o := range svc.List("u1") {
		ids = append(ids, o.ID)
	}
	require.Equal(t, []string{"o3", "o4", "o1"}, ids)
	require.Len(t, svc.List("u2"), 1)
	require.Empty(t, svc.List("nobody"))
}

func TestList_SameInstantKeepsLatestFirst(t *testing.T) {
	svc := NewService()
	svc.Record(&domorder.Order{ID: "a", UserID: "u1", CreatedAt: at(1)})
	svc.Record(&domorder.Order{ID: "b", UserID: "u1", CreatedAt: at(1)})

	list := svc.List("u1")
	require.Equal(t, "b", list[0].ID)
	require.Equal(t, "a", list[1].ID)
}

func TestGet(t *testing.T) {
	svc := NewService()
	svc.Record(&domorder.Order{ID: "o1", UserID: "u1", Items: []domorder.OrderItem{{ProductID: "p1", Quantity: 2}}})

	o, err := svc.Get("u1", "o1")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)

	o.Items[0].Quantity = 99
	again, err := svc.Get("u1", "o1")
	require.NoError(t, err)
	require.Equal(t, 2, again.Items[0].Quantity)

	_, err = svc.Get("u2", "o1")
	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
}

func TestReset(t *testing.T) {
	svc := NewService()
	svc.Record(&domorder.Order{ID: "o1", UserID: "u1"})
	svc.Record(&domorder.Order{ID: "o2", UserID: "u2"})

	svc.Reset("u1")
	require.Empty(t, svc.List("u1"))
	require.Len(t, svc.List("u2"), 1)
}
