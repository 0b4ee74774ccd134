package roadmap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"careermind-api/internal/inference"
	"careermind-api/internal/shared"
	"careermind-api/internal/slots"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	policy  inference.DecodingPolicy
	output  string
	err     error
	panics  bool
	block   bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, policy inference.DecodingPolicy) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.policy = policy
	f.mu.Unlock()
	if f.panics {
		panic("tensor shape mismatch")
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.output, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type exhaustedLimiter struct{}

func (exhaustedLimiter) Acquire(ctx context.Context) (func(), error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestService(t *testing.T, gen Generator, limiter slots.Limiter, timeout time.Duration) *Service {
	t.Helper()
	svc, err := NewService(gen, limiter, Config{Model: "test", Timeout: timeout}, nil)
	require.NoError(t, err)
	return svc
}

const validBody = `{"career_goal":"Become a Data Scientist","skills":["Python","SQL"],"learning_preference":"Project-based learning"}`

func TestService_Generate_Success(t *testing.T) {
	gen := &fakeGenerator{output: "Career Goal: Become a Data Scientist\n...Roadmap: 1. Statistics"}
	svc := newTestService(t, gen, nil, time.Second)

	res, err := svc.Generate(context.Background(), []byte(validBody))
	require.NoError(t, err)
	assert.Equal(t, gen.output, res.Roadmap)
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "Career Goal: Become a Data Scientist\nSkills: Python, SQL\nLearning Preference: Project-based learning\nRoadmap:", gen.prompts[0])
	assert.Equal(t, inference.RoadmapPolicy(), gen.policy)
}

func TestService_Generate_InvalidNeverInvokesModel(t *testing.T) {
	gen := &fakeGenerator{output: "unused"}
	svc := newTestService(t, gen, nil, time.Second)

	_, err := svc.Generate(context.Background(), []byte(`{"career_goal":"","skills":["Python"],"learning_preference":"Books"}`))
	var ierr *InvalidRequestError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, []string{FieldCareerGoal}, ierr.Missing)
	assert.Equal(t, 0, gen.calls())
}

func TestService_Generate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		gen      *fakeGenerator
		limiter  slots.Limiter
		wantCode string
	}{
		{name: "generator error", gen: &fakeGenerator{err: errors.New("resource exhausted")}, wantCode: shared.ErrModelUnknown.Code},
		{name: "typed generation error", gen: &fakeGenerator{err: &inference.GenerationError{Code: shared.ErrColdStart.Code, Err: shared.ErrColdStart}}, wantCode: shared.ErrColdStart.Code},
		{name: "panic", gen: &fakeGenerator{panics: true}, wantCode: shared.ErrModelPanic.Code},
		{name: "timeout", gen: &fakeGenerator{block: true}, wantCode: shared.ErrModelContext.Code},
		{name: "no slot", gen: &fakeGenerator{output: "unused"}, limiter: exhaustedLimiter{}, wantCode: shared.ErrSlotTimeout.Code},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.gen, tt.limiter, 30*time.Millisecond)
			res, err := svc.Generate(context.Background(), []byte(validBody))
			var gerr *inference.GenerationError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.wantCode, gerr.Code)
			if res != nil {
				assert.Empty(t, res.Roadmap)
			}
		})
	}
}

func TestService_Generate_SlotTimeoutSkipsModel(t *testing.T) {
	gen := &fakeGenerator{output: "unused"}
	svc := newTestService(t, gen, exhaustedLimiter{}, 10*time.Millisecond)
	_, err := svc.Generate(context.Background(), []byte(validBody))
	assert.ErrorIs(t, err, shared.ErrSlotTimeout)
	assert.Equal(t, 0, gen.calls())
}

func TestService_Generate_Deterministic(t *testing.T) {
	gen := &fakeGenerator{output: "fixed output"}
	svc := newTestService(t, gen, slots.NewLocalLimiter(1), time.Second)

	first, err := svc.Generate(context.Background(), []byte(validBody))
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), []byte(validBody))
	require.NoError(t, err)
	assert.Equal(t, first.Roadmap, second.Roadmap)
	assert.Equal(t, gen.prompts[0], gen.prompts[1])
}

func TestService_Generate_Concurrent(t *testing.T) {
	gen := &fakeGenerator{output: "ok"}
	svc := newTestService(t, gen, slots.NewLocalLimiter(2), time.Second)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Generate(context.Background(), []byte(validBody))
			if assert.NoError(t, err) {
				assert.Equal(t, "ok", res.Roadmap)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, gen.calls())
}

func TestNewService_RequiresGenerator(t *testing.T) {
	_, err := NewService(nil, nil, Config{}, nil)
	assert.Error(t, err)
}
