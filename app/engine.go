/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package app

import (
	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/face"
	"github.com/named-data/closersite/fw"
	"github.com/named-data/closersite/ndn"
	"github.com/pkg/errors"
)

// InterestResult is the outcome of an expressed Interest.
type InterestResult int

const (
	InterestResultNone InterestResult = iota
	InterestResultData
	InterestResultNack
	InterestResultTimeout
)

func (r InterestResult) String() string {
	switch r {
	case InterestResultData:
		return "Data"
	case InterestResultNack:
		return "Nack"
	case InterestResultTimeout:
		return "Timeout"
	default:
		return "None"
	}
}

// ExpressCallbackArgs represents the arguments passed to the ExpressCallbackFunc.
type ExpressCallbackArgs struct {
	Result     InterestResult
	Interest   *ndn.Interest
	Data       *ndn.Data
	NackReason ndn.NackReason
}

// ExpressCallbackFunc represents the callback function for Interest expression.
type ExpressCallbackFunc func(args ExpressCallbackArgs)

// InterestHandler answers an Interest. reply may be called at most once.
type InterestHandler func(interest *ndn.Interest, reply func(data *ndn.Data))

type pendingInterest struct {
	interest      *ndn.Interest
	callback      ExpressCallbackFunc
	cancelTimeout func() error
}

type interestHandler struct {
	prefix  ndn.Name
	handler InterestHandler
}

// Engine connects an application to the forwarder of its node through an app face.
// Callbacks run on the events of the forwarder's clock.
type Engine struct {
	name     string
	timer    ndn.Timer
	face     *face.AppFace
	faceID   uint64
	thread   *fw.Thread
	pending  map[uint32]*pendingInterest // Key is nonce
	handlers []interestHandler
}

// NewEngine creates an application on the node of thread. The app face is
// registered with the forwarder right away.
func NewEngine(timer ndn.Timer, thread *fw.Thread, name string) *Engine {
	e := &Engine{
		name:    name,
		timer:   timer,
		thread:  thread,
		pending: make(map[uint32]*pendingInterest),
	}
	e.face = face.NewAppFace(timer, thread.GetID(), name)
	e.face.SetApplication(e.onPacket)
	e.faceID = thread.AddFace(e.face)
	return e
}

func (e *Engine) String() string {
	return "App-" + e.name + "-" + e.thread.GetID()
}

// Timer returns the clock of the application.
func (e *Engine) Timer() ndn.Timer {
	return e.timer
}

// FaceID returns the ID of the app face at the forwarder.
func (e *Engine) FaceID() uint64 {
	return e.faceID
}

// NumPending returns the number of Interests waiting for a result.
func (e *Engine) NumPending() int {
	return len(e.pending)
}

// Express sends an Interest and calls callback exactly once with its result.
// An Interest whose nonce is already pending is refused.
func (e *Engine) Express(interest *ndn.Interest, callback ExpressCallbackFunc) error {
	if _, ok := e.pending[interest.Nonce()]; ok {
		return errors.Wrapf(ErrDuplicateNonce, "express %s", interest.Name())
	}
	p := &pendingInterest{interest: interest, callback: callback}
	nonce := interest.Nonce()
	p.cancelTimeout = e.timer.Schedule(interest.Lifetime(), func() {
		if e.pending[nonce] != p {
			return
		}
		delete(e.pending, nonce)
		core.LogTrace(e, "Timeout for Interest=", interest.Name())
		callback(ExpressCallbackArgs{Result: InterestResultTimeout, Interest: interest})
	})
	e.pending[nonce] = p
	core.LogTrace(e, "Express Interest=", interest.Name(), " Nonce=", nonce)
	e.face.Inject(&ndn.Packet{Interest: interest})
	return nil
}

// AttachHandler registers handler for Interests under prefix and adds a
// route for prefix towards the application.
func (e *Engine) AttachHandler(prefix ndn.Name, handler InterestHandler) error {
	for _, h := range e.handlers {
		if h.prefix.Equal(prefix) {
			return errors.Wrapf(ErrHandlerExists, "attach %s", prefix)
		}
	}
	e.handlers = append(e.handlers, interestHandler{prefix: prefix, handler: handler})
	e.thread.Fib().InsertNextHop(prefix, e.faceID, 0)
	core.LogDebug(e, "Attached handler for Prefix=", prefix)
	return nil
}

// Put sends an unsolicited Data packet to the forwarder.
func (e *Engine) Put(data *ndn.Data) {
	e.face.Inject(&ndn.Packet{Data: data})
}

func (e *Engine) onPacket(packet *ndn.Packet) {
	switch {
	case packet.Interest != nil:
		e.onInterest(packet.Interest)
	case packet.Data != nil:
		e.onData(packet.Data)
	case packet.Nack != nil:
		e.onNack(packet.Nack)
	}
}

func (e *Engine) onInterest(interest *ndn.Interest) {
	var match *interestHandler
	for i, h := range e.handlers {
		if h.prefix.IsPrefix(interest.Name()) && (match == nil || len(h.prefix) > len(match.prefix)) {
			match = &e.handlers[i]
		}
	}
	if match == nil {
		core.LogDebug(e, "No handler for Interest=", interest.Name(), " - DROP")
		return
	}
	replied := false
	match.handler(interest, func(data *ndn.Data) {
		if replied {
			return
		}
		replied = true
		e.Put(data)
	})
}

func (e *Engine) onData(data *ndn.Data) {
	matched := false
	for _, nonce := range e.pendingNonces() {
		p, ok := e.pending[nonce]
		if !ok || !data.CanSatisfy(p.interest) {
			continue
		}
		matched = true
		delete(e.pending, nonce)
		p.cancelTimeout()
		p.callback(ExpressCallbackArgs{Result: InterestResultData, Interest: p.interest, Data: data})
	}
	if !matched {
		core.LogDebug(e, "Unsolicited Data=", data.Name(), " - DROP")
	}
}

func (e *Engine) onNack(nack *ndn.Nack) {
	nonce := nack.Interest.Nonce()
	p, ok := e.pending[nonce]
	if !ok || !p.interest.Name().Equal(nack.Name()) {
		core.LogDebug(e, "Nack for unknown Interest=", nack.Name(), " - DROP")
		return
	}
	delete(e.pending, nonce)
	p.cancelTimeout()
	p.callback(ExpressCallbackArgs{Result: InterestResultNack, Interest: p.interest, NackReason: nack.Reason})
}

// pendingNonces returns the pending nonces in ascending order so that
// callbacks run in a reproducible order.
func (e *Engine) pendingNonces() []uint32 {
	return sortedKeys(e.pending)
}
