package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing proposal service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Links: &mockLinkService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingProposalService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Proposals: &mockProposalService{},
			Links:     &mockLinkService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports", func(t *testing.T) {
		ports := &Ports{}
		assert.ErrorIs(t, ports.Validate(), ErrMissingProposalService)
	})

	t.Run("missing link service", func(t *testing.T) {
		ports := &Ports{Proposals: &mockProposalService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingLinkService)
	})

	t.Run("keywords are optional", func(t *testing.T) {
		ports := &Ports{
			Proposals: &mockProposalService{},
			Links:     &mockLinkService{},
		}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Proposals: &mockProposalService{},
			Links:     &mockLinkService{},
			Keywords:  &mockKeywordService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server := newTestServer(t, &Ports{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * shutdownGrace):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestServer_RunHTTP_BadAddress(t *testing.T) {
	server := newTestServer(t, &Ports{})
	err := server.RunHTTP(context.Background(), "256.0.0.1:bad")
	assert.Error(t, err)
}
