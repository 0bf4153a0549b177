package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/table"
)

func TestResolveGSX(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    FieldMap
	}{
		{
			name:    "chinese export",
			headers: []string{"維修", "採購訂單", "維修狀態", "建立日期"},
			want: FieldMap{
				PurchaseOrderKey: "採購訂單",
				TicketID:         "維修",
				TicketStatus:     "維修狀態",
				CreationDate:     "建立日期",
			},
		},
		{
			name:    "english export",
			headers: []string{"Repair ID", "Purchase Order", "Repair Status", "Created On"},
			want: FieldMap{
				PurchaseOrderKey: "Purchase Order",
				TicketID:         "Repair ID",
				TicketStatus:     "Repair Status",
				CreationDate:     "Created On",
			},
		},
		{
			name:    "exact tier beats earlier substring match",
			headers: []string{"採購單位", "採購訂單"},
			want:    FieldMap{PurchaseOrderKey: "採購訂單"},
		},
		{
			name:    "leftmost header wins within a tier",
			headers: []string{"PO Number", "Purchase Ref"},
			want:    FieldMap{PurchaseOrderKey: "PO Number"},
		},
		{
			name:    "optional roles may stay unresolved",
			headers: []string{"PO"},
			want:    FieldMap{PurchaseOrderKey: "PO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.headers, DefaultGSX()))
		})
	}
}

func TestResolveSA(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    FieldMap
	}{
		{
			name:    "exact names",
			headers: []string{"單號", "保固狀態", "狀態"},
			want:    FieldMap{PurchaseOrderKey: "單號", TicketStatus: "狀態"},
		},
		{
			name:    "warranty status is skipped",
			headers: []string{"維修單號", "保固狀態", "處理狀態"},
			want:    FieldMap{PurchaseOrderKey: "維修單號", TicketStatus: "處理狀態"},
		},
		{
			name:    "english fallback",
			headers: []string{"Order Number", "Ticket Status"},
			want:    FieldMap{PurchaseOrderKey: "Order Number", TicketStatus: "Ticket Status"},
		},
		{
			name:    "nothing resolves",
			headers: []string{"foo", "bar"},
			want:    FieldMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.headers, DefaultSA()))
		})
	}
}

func TestFieldMapValue(t *testing.T) {
	m := FieldMap{PurchaseOrderKey: "PO", TicketStatus: "Status"}
	row := table.Row{"PO": "A1-9"}

	v, ok := m.Value(row, PurchaseOrderKey)
	assert.True(t, ok)
	assert.Equal(t, "A1-9", v)

	_, ok = m.Value(row, TicketStatus)
	assert.False(t, ok, "row has no cell under the bound header")

	_, ok = m.Value(row, TicketID)
	assert.False(t, ok, "role is unresolved")
}

func TestRequireGSX(t *testing.T) {
	headers := []string{"Name", "Date"}
	err := RequireGSX(Resolve(headers, DefaultGSX()), headers)
	require.Error(t, err)
	assert.True(t, errors.IsMissingColumn(err))

	var mc *errors.MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "gsx", mc.Side)
	assert.Equal(t, string(PurchaseOrderKey), mc.Role)
	assert.Equal(t, headers, mc.Headers)

	assert.NoError(t, RequireGSX(FieldMap{PurchaseOrderKey: "PO"}, nil))
}

func TestMerge(t *testing.T) {
	override := CandidateTable{
		TicketStatus: {{Equals: []string{"Stage"}}},
		TicketID:     nil,
	}
	merged := DefaultSA().Merge(override)

	assert.Equal(t, Candidates{{Equals: []string{"Stage"}}}, merged[TicketStatus])
	assert.Equal(t, DefaultSA()[PurchaseOrderKey], merged[PurchaseOrderKey])
	assert.NotContains(t, merged, TicketID, "empty override is ignored")

	m := Resolve([]string{"單號", "Stage", "狀態"}, merged)
	assert.Equal(t, "Stage", m[TicketStatus])
}
