package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func TestSerializeDeserialize(t *testing.T) {
	p := New(42, []byte("hello page"))
	p.Data[DATA_SIZE-1] = 0xAB

	buf := p.Serialize()
	require.Len(t, buf, util.PageSize)

	got, err := Deserialize(buf)
	require.NoError(t, err)
	assert.Equal(t, util.PageID(42), got.Number())
	assert.Equal(t, p.Data, got.Data, "data survives round trip")
	assert.Equal(t, p.Header.Checksum, got.Header.Checksum)
	assert.False(t, got.Header.IsFree())
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			name:    "Short buffer",
			mutate:  func(b []byte) []byte { return b[:util.PageSize-1] },
			wantErr: util.ErrInvalidPageSize,
		},
		{
			name: "Corrupted data",
			mutate: func(b []byte) []byte {
				b[HEADER_SIZE+3] ^= 0xFF
				return b
			},
			wantErr: util.ErrChecksumMismatch,
		},
		{
			name: "Corrupted checksum",
			mutate: func(b []byte) []byte {
				b[8] ^= 0x01
				return b
			},
			wantErr: util.ErrChecksumMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := New(7, []byte("payload")).Serialize()
			_, err := Deserialize(tt.mutate(buf))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFreeFlag(t *testing.T) {
	p := New(3, nil)
	p.Header.SetFreeFlag()
	assert.True(t, p.Header.IsFree())

	got, err := Deserialize(p.Serialize())
	require.NoError(t, err)
	assert.True(t, got.Header.IsFree(), "flag persisted")

	got.Header.ClearFreeFlag()
	assert.False(t, got.Header.IsFree())
}

func TestReset(t *testing.T) {
	p := New(9, []byte("stale"))
	p.Reset()
	assert.Equal(t, util.PageID(0), p.Number())
	assert.Equal(t, [DATA_SIZE]byte{}, p.Data)
}

func TestNewTruncates(t *testing.T) {
	long := make([]byte, DATA_SIZE+10)
	for i := range long {
		long[i] = byte(i)
	}

	p := New(5, long)
	assert.Equal(t, util.PageID(5), p.Number())
	assert.Equal(t, long[:DATA_SIZE], p.Data[:])
}
