// Package server implements the ConnectionServer: the TCP accept loop and
// per-connection worker that drive Accumulator -> RingLog -> LogStore and
// echo the log back to each client.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/commandlogd/commandlogd/internal/accumulator"
	"github.com/commandlogd/commandlogd/internal/logstore"
	"github.com/commandlogd/commandlogd/internal/ringlog"
)

// ListenBacklog documents the coursework's listen(2) backlog. The stdlib's
// net.Listen has no portable way to pass a backlog through, so this is not
// wired into Serve; it exists so the value the original assignment specified
// stays on record (see DESIGN.md).
const ListenBacklog = 3

// Recorder receives session lifecycle events for telemetry. Optional — a
// nil Recorder silently drops them.
type Recorder interface {
	SessionOpened(id, remoteAddr string, at time.Time) error
	SessionClosed(id string, at time.Time, commandsCount int, bytesWritten int64) error
}

// Server accepts TCP connections, persists committed commands, and echoes
// the log back to each client. It also serves as the single commit point
// Ticker appends through, so client commands and timestamp commands never
// interleave mid-write.
type Server struct {
	listenAddr string
	readChunk  int
	ring       *ringlog.Log
	store      *logstore.Store
	recorder   Recorder

	commitMu sync.Mutex

	wg       sync.WaitGroup
	sessMu   sync.Mutex
	sessions map[string]*session
}

// New returns a Server ready to Serve on listenAddr.
func New(listenAddr string, readChunk int, ring *ringlog.Log, store *logstore.Store, recorder Recorder) *Server {
	return &Server{
		listenAddr: listenAddr,
		readChunk:  readChunk,
		ring:       ring,
		store:      store,
		recorder:   recorder,
		sessions:   make(map[string]*session),
	}
}

// session is a transient object bundling one socket, one Accumulator, and
// the worker goroutine that drives them, keyed by a completion flag so the
// accept loop's sweep can reap it.
type session struct {
	id       string
	conn     net.Conn
	acc      *accumulator.Accumulator
	commands int
	written  int64
	done     bool
}

// Serve runs the accept loop until ctx is canceled. It closes the listening
// socket on cancellation (causing Accept to fail and the loop to exit),
// then joins every still-running worker before returning.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return err
	}

	if tl, ok := ln.(*net.TCPListener); ok {
		defer tl.Close()
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Printf("[server] listening on %s", s.listenAddr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
				return err
			}
		}

		sess := &session{
			id:   uuid.New().String(),
			conn: conn,
			acc:  accumulator.New(),
		}

		s.sessMu.Lock()
		s.sessions[sess.id] = sess
		s.sweepLocked()
		s.sessMu.Unlock()

		if s.recorder != nil {
			if err := s.recorder.SessionOpened(sess.id, conn.RemoteAddr().String(), time.Now()); err != nil {
				log.Printf("[server] telemetry error: %v", err)
			}
		}

		s.wg.Add(1)
		go s.handle(ctx, sess)
	}
}

// sweepLocked removes completed sessions. Callers must hold sessMu.
func (s *Server) sweepLocked() {
	for id, sess := range s.sessions {
		if sess.done {
			delete(s.sessions, id)
		}
	}
}

// handle drives one connection's READING/REPLYING/CLOSING state machine.
func (s *Server) handle(ctx context.Context, sess *session) {
	defer s.wg.Done()
	defer s.closeSession(sess)

	log.Printf("[server] accepted connection from %s (session %s)", sess.conn.RemoteAddr(), sess.id)

	buf := make([]byte, s.readChunk)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := sess.conn.Read(buf)
		if n > 0 {
			if cmd, ok := sess.acc.Feed(buf[:n]); ok {
				if commitErr := s.commit(cmd); commitErr != nil {
					log.Printf("[server] commit error for session %s: %v", sess.id, commitErr)
					return
				}
				sess.commands++
				snapshot, readErr := s.store.Snapshot()
				if readErr != nil {
					log.Printf("[server] snapshot error for session %s: %v", sess.id, readErr)
					return
				}
				written, writeErr := sess.conn.Write(snapshot)
				sess.written += int64(written)
				if writeErr != nil || written != len(snapshot) {
					return
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("[server] read error for session %s: %v", sess.id, err)
			}
			return
		}
	}
}

// commit appends cmd to the ring log and the durable store as a single
// step under the server's commit lock, so Ticker appends cannot land
// between the two and so two connections' commits cannot interleave
// mid-command.
func (s *Server) commit(cmd []byte) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	owned := make([]byte, len(cmd))
	copy(owned, cmd)
	s.ring.Append(owned)
	return s.store.Append(owned)
}

// TickerAppend lets a ticker.Ticker append through the same commit lock as
// client commands, without going through RingLog — Ticker commands are
// not part of the bounded ring the char-device surface reads, only the
// durable file every client sees echoed back (spec.md §4.6).
func (s *Server) TickerAppend(cmd []byte) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	return s.store.Append(cmd)
}

func (s *Server) closeSession(sess *session) {
	sess.conn.Close()

	s.sessMu.Lock()
	sess.done = true
	s.sweepLocked()
	s.sessMu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.SessionClosed(sess.id, time.Now(), sess.commands, sess.written); err != nil {
			log.Printf("[server] telemetry error: %v", err)
		}
	}

	log.Printf("[server] closed connection for session %s", sess.id)
}

// ActiveSessions returns the number of sessions currently being served.
func (s *Server) ActiveSessions() int {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	return len(s.sessions)
}
