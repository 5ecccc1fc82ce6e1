package telemetry

import (
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/quadrover/i2clink/pkg/host"
	"github.com/quadrover/i2clink/pkg/protocol"
)

// Topics under the queue's prefix.
const (
	TopicTransactions = "tx"
	TopicStatus       = "status"
)

// Transaction is the JSON document published per transaction.
type Transaction struct {
	Command   string   `json:"command"`
	State     string   `json:"state"`
	Cause     string   `json:"cause,omitempty"`
	Status    string   `json:"status,omitempty"`
	Speeds    [4]int16 `json:"speeds"`
	ElapsedUs int64    `json:"elapsed_us"`
}

// MotorStatus is the JSON document published per status poll.
type MotorStatus struct {
	Speeds [4]int16 `json:"speeds"`
}

// Publisher reports protocol activity over a Queue.
type Publisher struct {
	Queue *Queue
}

// NewPublisher creates a Publisher on q.
func NewPublisher(q *Queue) *Publisher {
	return &Publisher{Queue: q}
}

// TransactionDoc builds the document for one outcome.
func TransactionDoc(cmd protocol.Command, out host.Outcome, elapsed time.Duration) Transaction {
	doc := Transaction{
		Command:   cmd.String(),
		State:     "done",
		Speeds:    out.Response.Speeds,
		ElapsedUs: elapsed.Microseconds(),
	}
	if out.Failed() {
		doc.State = "failed"
		doc.Cause = out.Cause.Error()
	}
	if out.Response.Status.IsValid() {
		doc.Status = out.Response.Status.String()
	}
	return doc
}

// PublishOutcome publishes one transaction outcome.
func (p *Publisher) PublishOutcome(cmd protocol.Command, out host.Outcome, elapsed time.Duration) {
	data, err := json.Marshal(TransactionDoc(cmd, out, elapsed))
	if err != nil {
		glog.Errorf("marshal transaction: %v", err)
		return
	}
	p.Queue.Pub(TopicTransactions, data)
}

// PublishStatus publishes the current motor speeds.
func (p *Publisher) PublishStatus(speeds protocol.Speeds) {
	data, err := json.Marshal(MotorStatus{Speeds: speeds})
	if err != nil {
		glog.Errorf("marshal status: %v", err)
		return
	}
	p.Queue.Pub(TopicStatus, data)
}
