// Copyright 2024 Wikimedia Foundation

// Package event provides a simple event stream in lieu of standard logging.
// All parts of the toolkit send events about what's happening; the receiver
// decides what to do with them.
package event

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/wikimedia/wmfdb"
)

// Event is something that happened in the toolkit. Events replace
// traditional logging. Addr identifies the database instance involved,
// when there is one.
type Event struct {
	Ts      time.Time
	Event   string
	Addr    string
	Message string
	Error   bool
}

// A Receiver sends events to a destination. Implementations must be
// non-blocking; callers expect this.
type Receiver interface {
	// Recv receives one event asynchronously. It must not block.
	Recv(Event)
}

// receiver is the private package Receiver the functions below use. The
// default logs errors to stderr; override with SetReceiver.
var receiver Receiver = Log{}

var subscribers = []Receiver{}
var submux = &sync.Mutex{}

// SetReceiver sets the receiver used to handle events. If override is
// false and a receiver was already set, the existing one is kept.
func SetReceiver(r Receiver, override bool) {
	if receiver != nil && !override {
		return
	}
	receiver = r
}

func Subscribe(r Receiver) {
	submux.Lock()
	subscribers = append(subscribers, r)
	submux.Unlock()
}

func RemoveSubscribers() {
	submux.Lock()
	subscribers = []Receiver{}
	submux.Unlock()
}

// Send sends an event with no additional message.
// This is a convenience function for Sendf.
func Send(eventName string) {
	send(Event{Ts: time.Now(), Event: eventName})
}

// Sendf sends an event and formatted message.
func Sendf(eventName string, msg string, args ...interface{}) {
	send(Event{
		Ts:      time.Now(),
		Event:   eventName,
		Message: fmt.Sprintf(msg, args...),
	})
}

// Errorf sends an event flagged as an error with a formatted message.
func Errorf(eventName string, msg string, args ...interface{}) {
	send(Event{
		Ts:      time.Now(),
		Event:   eventName,
		Message: fmt.Sprintf(msg, args...),
		Error:   true,
	})
}

func send(e Event) {
	receiver.Recv(e)
	submux.Lock()
	for _, s := range subscribers {
		s.Recv(e)
	}
	submux.Unlock()
}

// --------------------------------------------------------------------------

// InstanceReceiver is a Receiver bound to a single database instance.
// Callers working on one instance use this type so every event carries the
// instance address.
type InstanceReceiver struct {
	Addr string
}

var _ Receiver = InstanceReceiver{}

func (s InstanceReceiver) Recv(e Event) {
	send(e)
}

func (s InstanceReceiver) Send(eventName string) {
	send(Event{Ts: time.Now(), Event: eventName, Addr: s.Addr})
}

func (s InstanceReceiver) Sendf(eventName string, msg string, args ...interface{}) {
	send(Event{
		Ts:      time.Now(),
		Event:   eventName,
		Message: fmt.Sprintf(msg, args...),
		Addr:    s.Addr,
	})
}

func (s InstanceReceiver) Errorf(eventName string, msg string, args ...interface{}) {
	send(Event{
		Ts:      time.Now(),
		Event:   eventName,
		Message: fmt.Sprintf(msg, args...),
		Addr:    s.Addr,
		Error:   true,
	})
}

// --------------------------------------------------------------------------

var stdout = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
var stderr = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

// Log is the default Receiver. Error events go to stderr; other events go
// to stdout when All is set or debugging is on.
type Log struct {
	All bool
}

func (s Log) Recv(e Event) {
	if e.Error {
		stderr.Printf("[%-20s] [%s] ERROR: %s", e.Event, e.Addr, e.Message)
		return
	}
	if s.All || wmfdb.Debugging {
		stdout.Printf("[%-20s] [%s] %s", e.Event, e.Addr, e.Message)
	}
}
