package app

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/named-data/closersite/engine/dummy"
	"github.com/named-data/closersite/face"
	"github.com/named-data/closersite/fw"
	"github.com/named-data/closersite/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoNodes links a client node C to a server node S serving /cmip5/app.
func twoNodes(t *testing.T, delay time.Duration) (*dummy.Timer, *fw.Thread, *fw.Thread) {
	timer := dummy.NewTimer(1)
	client := fw.NewThread("C", timer, 0)
	server := fw.NewThread("S", timer, 0)
	fc, fs := face.NewLinkPair(timer, nil, "C", "S", face.LinkParams{Bandwidth: 1_000_000_000_000, Delay: delay})
	client.Fib().InsertNextHop(ndn.MustNameFromStr("/cmip5/app"), client.AddFace(fc), 0)
	server.AddFace(fs)
	return timer, client, server
}

func consumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Prefix:           ndn.MustNameFromStr("/cmip5/app"),
		PipelineSize:     4,
		SegmentSize:      100,
		InterestLifetime: 10 * time.Second,
		RetryLifetime:    time.Second,
		RetryDelay:       time.Second,
	}
}

func TestEngineExpress(t *testing.T) {
	timer, client, server := twoNodes(t, 5*time.Millisecond)
	prod := NewEngine(timer, server, "producer")
	require.NoError(t, prod.AttachHandler(ndn.MustNameFromStr("/cmip5/app"), func(interest *ndn.Interest, reply func(*ndn.Data)) {
		reply(&ndn.Data{NameV: interest.Name()})
		reply(&ndn.Data{NameV: interest.Name()})
	}))
	assert.ErrorIs(t, prod.AttachHandler(ndn.MustNameFromStr("/cmip5/app"), nil), ErrHandlerExists)

	cons := NewEngine(timer, client, "consumer")
	var results []ExpressCallbackArgs
	record := func(args ExpressCallbackArgs) { results = append(results, args) }

	interest := ndn.NewInterest(ndn.MustNameFromStr("/cmip5/app/x"), 1)
	require.NoError(t, cons.Express(interest, record))
	assert.ErrorIs(t, cons.Express(interest, record), ErrDuplicateNonce)
	assert.Equal(t, 1, cons.NumPending())

	timer.MoveForward(time.Second)
	require.Len(t, results, 1)
	assert.Equal(t, InterestResultData, results[0].Result)
	assert.Equal(t, "/cmip5/app/x", results[0].Data.Name().String())
	assert.Equal(t, 0, cons.NumPending())
	// The second reply is ignored
	assert.Equal(t, uint64(1), server.Counters().NOutData)

	// No route at C
	require.NoError(t, cons.Express(ndn.NewInterest(ndn.MustNameFromStr("/other"), 2), record))
	timer.MoveForward(time.Second)
	require.Len(t, results, 2)
	assert.Equal(t, InterestResultNack, results[1].Result)
	assert.Equal(t, ndn.NackReasonNoRoute, results[1].NackReason)
}

func TestEngineTimeout(t *testing.T) {
	timer, client, _ := twoNodes(t, 5*time.Millisecond)
	// An application on C that never answers
	cons := NewEngine(timer, client, "consumer")
	silent := NewEngine(timer, client, "silent")
	require.NoError(t, silent.AttachHandler(ndn.MustNameFromStr("/quiet"), func(*ndn.Interest, func(*ndn.Data)) {}))

	interest := ndn.NewInterest(ndn.MustNameFromStr("/quiet/x"), 1)
	interest.LifetimeV = 200 * time.Millisecond
	var results []ExpressCallbackArgs
	require.NoError(t, cons.Express(interest, func(args ExpressCallbackArgs) { results = append(results, args) }))
	timer.MoveForward(199 * time.Millisecond)
	assert.Empty(t, results)
	timer.MoveForward(time.Millisecond)
	require.Len(t, results, 1)
	assert.Equal(t, InterestResultTimeout, results[0].Result)
	assert.Equal(t, "Timeout", results[0].Result.String())
}

func TestProducerOdds(t *testing.T) {
	timer, _, server := twoNodes(t, time.Millisecond)
	always := NewProducer(NewEngine(timer, server, "a"), ProducerConfig{
		Prefix: ndn.MustNameFromStr("/a"), PayloadSize: 3, Freshness: time.Second,
	}, nil)
	never := NewProducer(NewEngine(timer, server, "b"), ProducerConfig{
		Prefix: ndn.MustNameFromStr("/b"), Odds: 100,
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, always.Start())
	require.NoError(t, never.Start())

	var data []*ndn.Data
	always.onInterest(ndn.NewInterest(ndn.MustNameFromStr("/a/1"), 1), func(d *ndn.Data) { data = append(data, d) })
	never.onInterest(ndn.NewInterest(ndn.MustNameFromStr("/b/1"), 1), func(d *ndn.Data) { data = append(data, d) })
	require.Len(t, data, 1)
	assert.Equal(t, 3, data[0].Size())
	assert.Equal(t, time.Second, data[0].Freshness())
	assert.Equal(t, ProducerStats{NInterests: 1, NData: 1}, always.Stats())
	assert.Equal(t, ProducerStats{NInterests: 1, NDropped: 1}, never.Stats())
}

func TestSegmentCount(t *testing.T) {
	assert.Equal(t, 1, SegmentCount(0, 100))
	assert.Equal(t, 1, SegmentCount(-1, 100))
	assert.Equal(t, 1, SegmentCount(100, 100))
	assert.Equal(t, 2, SegmentCount(101, 100))
	assert.Equal(t, 3, SegmentCount(2.5e8, 1e8))
}

func TestConsumerFetchesInOrder(t *testing.T) {
	timer, client, server := twoNodes(t, 5*time.Millisecond)
	var served []string
	require.NoError(t, NewEngine(timer, server, "producer").AttachHandler(ndn.MustNameFromStr("/cmip5/app"),
		func(interest *ndn.Interest, reply func(*ndn.Data)) {
			served = append(served, interest.Name().String())
			assert.True(t, interest.MustBeFresh())
			reply(&ndn.Data{NameV: interest.Name(), FreshnessV: time.Second})
		}))

	cons := NewConsumer(NewEngine(timer, client, "consumer"), consumerConfig())
	stats := cons.Fetch(TraceRequest{Object: "obj", Size: 1000})
	require.NotNil(t, stats)
	assert.Equal(t, "/cmip5/app/obj/seg=10", stats.Name)
	assert.Equal(t, 10, stats.Segments)

	timer.MoveForward(6 * time.Millisecond)
	// Only the pipeline is requested at first
	assert.Len(t, served, 4)
	timer.MoveForward(time.Second)
	require.Len(t, served, 10)
	for i, name := range served {
		assert.True(t, strings.HasSuffix(name, "/seg=10/seg="+string(rune('0'+i))), name)
	}
	assert.True(t, stats.Complete)
	assert.Equal(t, 10, stats.Received)
	assert.Equal(t, 0, stats.Retransmissions)
	assert.Greater(t, stats.Duration(), 10*time.Millisecond)
	assert.Len(t, cons.Objects(), 1)
}

func TestConsumerRetries(t *testing.T) {
	timer, client, server := twoNodes(t, 5*time.Millisecond)
	drops := 2
	require.NoError(t, NewEngine(timer, server, "producer").AttachHandler(ndn.MustNameFromStr("/cmip5/app"),
		func(interest *ndn.Interest, reply func(*ndn.Data)) {
			if drops > 0 {
				drops--
				return
			}
			reply(&ndn.Data{NameV: interest.Name()})
		}))

	config := consumerConfig()
	config.InterestLifetime = time.Second
	cons := NewConsumer(NewEngine(timer, client, "consumer"), config)
	stats := cons.Fetch(TraceRequest{Object: "obj", Size: 50})
	assert.Equal(t, 1, stats.Segments)

	// Timeout at 1s, retry at 2s, timeout at 3s, retry at 4s is answered
	timer.MoveForward(3500 * time.Millisecond)
	assert.False(t, stats.Complete)
	timer.MoveForward(time.Second)
	assert.True(t, stats.Complete)
	assert.Equal(t, 2, stats.Retransmissions)
}

func TestConsumerGivesUp(t *testing.T) {
	timer, client, _ := twoNodes(t, 5*time.Millisecond)
	// S has no route, every Interest is Nacked
	config := consumerConfig()
	config.MaxRetries = 2
	config.PipelineSize = 1
	cons := NewConsumer(NewEngine(timer, client, "consumer"), config)
	stats := cons.Fetch(TraceRequest{Object: "obj", Size: 150})

	timer.MoveForward(time.Minute)
	assert.Equal(t, 2, stats.Segments)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 0, stats.Received)
	assert.Equal(t, 6, stats.Nacks)
	assert.Equal(t, 4, stats.Retransmissions)
	assert.False(t, stats.Complete)
	assert.False(t, stats.Finish.IsZero())
}

func TestConsumerSchedule(t *testing.T) {
	timer, client, server := twoNodes(t, time.Millisecond)
	require.NoError(t, NewProducer(NewEngine(timer, server, "producer"), ProducerConfig{
		Prefix: ndn.MustNameFromStr("/cmip5/app"),
	}, nil).Start())
	cons := NewConsumer(NewEngine(timer, client, "consumer"), consumerConfig())
	cons.Schedule([]TraceRequest{
		{Object: "late", Size: 1, Timestamp: 1010},
		{Object: "early", Size: 1, Timestamp: 1002},
		{Object: "old", Size: 1, Timestamp: 900},
	}, 1000)

	timer.MoveForward(time.Second)
	require.Len(t, cons.Objects(), 1)
	assert.Equal(t, "/cmip5/app/old/seg=1", cons.Objects()[0].Name)
	timer.MoveForward(20 * time.Second)
	require.Len(t, cons.Objects(), 3)
	assert.Equal(t, "/cmip5/app/early/seg=1", cons.Objects()[1].Name)
	for _, o := range cons.Objects() {
		assert.True(t, o.Complete, o.Name)
	}
}
