package natsclient

import (
	"testing"

	"orders-service/internal/domain/clients"
	"orders-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReply_ProductList(t *testing.T) {
	data := []byte(`[{"id":"P1","name":"Widget","price":10},{"id":"P2","name":"Gadget","price":5}]`)

	var products []entities.Product
	err := decodeReply(data, &products)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, 10.0, products[0].Price)
}

func TestDecodeReply_PaymentSession(t *testing.T) {
	data := []byte(`{"id":"cs_1","url":"https://pay/cs_1"}`)

	var session entities.PaymentSession
	err := decodeReply(data, &session)

	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://pay/cs_1", session.URL)
}

func TestDecodeReply_ErrorEnvelope(t *testing.T) {
	data := []byte(`{"error":{"status":400,"message":"some products were not found"}}`)

	var products []entities.Product
	err := decodeReply(data, &products)

	require.Error(t, err)
	assert.ErrorIs(t, err, clients.ErrRejected)
	assert.Contains(t, err.Error(), "some products were not found")
	assert.Nil(t, products)
}

func TestDecodeReply_Malformed(t *testing.T) {
	var products []entities.Product
	err := decodeReply([]byte(`not json`), &products)

	require.Error(t, err)
	assert.NotErrorIs(t, err, clients.ErrRejected)
}
