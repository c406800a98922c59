package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateInputDecoding(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		checkIn  Optional[time.Time]
		checkOut Optional[time.Time]
		nama     Optional[string]
	}{
		{
			name: "absent",
			body: `{}`,
		},
		{
			name:     "explicit null checkOut",
			body:     `{"checkOut": null}`,
			checkOut: Null[time.Time](),
		},
		{
			name: "empty string is a value",
			body: `{"nama": ""}`,
			nama: Some(""),
		},
		{
			name:    "timestamp",
			body:    `{"checkIn": "2024-03-01T08:00:00+07:00"}`,
			checkIn: Some(time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var in UpdateInput
			require.NoError(t, json.Unmarshal([]byte(tc.body), &in))

			assert.Equal(t, tc.checkIn.Set, in.CheckIn.Set)
			assert.Equal(t, tc.checkIn.Null, in.CheckIn.Null)
			assert.True(t, tc.checkIn.Value.Equal(in.CheckIn.Value))
			assert.Equal(t, tc.checkOut.Set, in.CheckOut.Set)
			assert.Equal(t, tc.checkOut.Null, in.CheckOut.Null)
			assert.Equal(t, tc.nama, in.Nama)
		})
	}
}

func TestUpdateInputEmpty(t *testing.T) {
	var in UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"other": 1}`), &in))
	assert.True(t, in.Empty())

	require.NoError(t, json.Unmarshal([]byte(`{"nama": null}`), &in))
	assert.False(t, in.Empty())
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var in UpdateInput
	assert.Error(t, json.Unmarshal([]byte(`{"checkIn": 12}`), &in))
}

func TestOptionalMarshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
	}{A: Some("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":null}`, string(b))
}
