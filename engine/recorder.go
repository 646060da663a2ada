package engine

import (
	"fmt"
	"log"
	"net"
	"os/exec"
	"time"
)

// DefaultRecorderAddr is the remote-control socket of the lab recorder.
const DefaultRecorderAddr = "localhost:22347"

// Recorder controls the external recording process over its line-oriented
// command socket.
type Recorder struct {
	conn    net.Conn
	cmd     *exec.Cmd
	grace   time.Duration
	log     *log.Logger
	sleep   func(time.Duration)
	stopped bool
}

// StartRecorder launches the recorder executable (when path is set) and
// connects to its control socket. A recorder that cannot be reached is fatal
// for the run.
func StartRecorder(path, addr string, grace time.Duration, logger *log.Logger) (*Recorder, error) {
	r := &Recorder{grace: grace, log: logger, sleep: time.Sleep}
	if path != "" {
		r.cmd = exec.Command(path)
		if _, err := r.cmd.StdinPipe(); err != nil {
			return nil, fmt.Errorf("recorder stdin: %w", err)
		}
		if err := r.cmd.Start(); err != nil {
			return nil, fmt.Errorf("launch recorder %s: %w", path, err)
		}
		logger.Printf("recorder launched: %s (pid %d)", path, r.cmd.Process.Pid)
	}

	conn, err := dialRetry(addr, 5*time.Second)
	if err != nil {
		r.terminate()
		return nil, fmt.Errorf("connect to recorder at %s: %w", addr, err)
	}
	r.conn = conn
	logger.Printf("recorder control connected: %s", addr)
	return r, nil
}

// dialRetry keeps dialing until the freshly launched recorder listens or
// the timeout passes.
func dialRetry(addr string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// SetFilename names the recording after task, participant and session.
// Only the last three characters of participant and session are sent.
func (r *Recorder) SetFilename(task, participant, session string) error {
	line := fmt.Sprintf("filename {task:%s} {participant:%s} {session:%s} \n",
		task, lastN(participant, 3), lastN(session, 3))
	if _, err := r.conn.Write([]byte(line)); err != nil {
		return fmt.Errorf("recorder filename: %w", err)
	}
	r.log.Printf("recorder filename: task=%s participant=%s session=%s", task, participant, session)
	return nil
}

// Stop sends the stop command once, waits the grace period for the recorder
// to flush, then terminates the recorder process.
func (r *Recorder) Stop() error {
	if r.stopped {
		return nil
	}
	r.stopped = true

	var err error
	if r.conn != nil {
		if _, werr := r.conn.Write([]byte("stop\n")); werr != nil {
			err = fmt.Errorf("recorder stop: %w", werr)
		}
		r.log.Printf("recorder stop sent, waiting %v", r.grace)
	}
	r.sleep(r.grace)
	r.terminate()
	if r.conn != nil {
		r.conn.Close()
	}
	return err
}

// Close drops the control connection and ends a launched recorder without
// the stop command. It is for runs that fail before the first frame.
func (r *Recorder) Close() error {
	if r.stopped {
		return nil
	}
	r.stopped = true
	r.terminate()
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

func (r *Recorder) terminate() {
	if r.cmd == nil || r.cmd.Process == nil {
		return
	}
	if err := r.cmd.Process.Kill(); err != nil {
		r.log.Printf("recorder terminate: %v", err)
	}
	r.cmd.Wait()
}

// lastN returns the last n characters of s.
func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
