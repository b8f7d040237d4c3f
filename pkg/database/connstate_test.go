package database

import (
	"sync"
	"testing"
)

func TestConnStateLifecycle(t *testing.T) {
	var s ConnState

	connected, connecting := s.Snapshot()
	if connected || connecting {
		t.Fatalf("initial state = {%v,%v}, want {false,false}", connected, connecting)
	}

	if !s.BeginConnect() {
		t.Fatal("first BeginConnect should win")
	}
	connected, connecting = s.Snapshot()
	if connected || !connecting {
		t.Errorf("mid-handshake state = {%v,%v}, want {false,true}", connected, connecting)
	}

	s.Succeed()
	connected, connecting = s.Snapshot()
	if !connected || connecting {
		t.Errorf("after success = {%v,%v}, want {true,false}", connected, connecting)
	}

	s.Fail()
	connected, connecting = s.Snapshot()
	if connected || connecting {
		t.Errorf("after failure = {%v,%v}, want {false,false}", connected, connecting)
	}
}

func TestConnStateRejectsConcurrentHandshakes(t *testing.T) {
	var s ConnState

	if !s.BeginConnect() {
		t.Fatal("first BeginConnect should win")
	}
	if s.BeginConnect() {
		t.Error("second BeginConnect should lose while connecting")
	}

	s.Succeed()
	if s.BeginConnect() {
		t.Error("BeginConnect should lose while connected")
	}

	s.Fail()
	if !s.BeginConnect() {
		t.Error("BeginConnect should win again after a failure")
	}
}

func TestConnStateSingleWinnerUnderRace(t *testing.T) {
	var s ConnState
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.BeginConnect() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}
