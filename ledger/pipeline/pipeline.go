// Package pipeline serializes batches of transactions from any number of producers
// into one handler, epoch by epoch
package pipeline

import (
	"sync"

	"github.com/lunfardo314/scroogeutxo/ledger"
	"github.com/lunfardo314/scroogeutxo/ledger/txhandler"
	"github.com/lunfardo314/scroogeutxo/util/fifoqueue"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type (
	Pipeline struct {
		log     *zap.SugaredLogger
		handler *txhandler.Handler
		queue   *fifoqueue.FIFOQueue[*batch]
		mutex   sync.Mutex
		epoch   atomic.Uint64
		stopped atomic.Bool
		done    chan struct{}
	}

	batch struct {
		txs    []*ledger.Transaction
		onDone func(epoch uint64, accepted []*ledger.Transaction)
	}
)

// New takes ownership of the handler: after Start, the handler's pool must only be accessed through the pipeline
func New(handler *txhandler.Handler, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		log:     log.Named("pipeline"),
		handler: handler,
		queue:   fifoqueue.New[*batch](),
		done:    make(chan struct{}),
	}
}

func (pipe *Pipeline) Start() {
	go func() {
		pipe.log.Infof("STARTED")
		pipe.queue.Consume(pipe.process)
		pipe.log.Infof("STOPPED after %d epochs", pipe.epoch.Load())
		close(pipe.done)
	}()
}

func (pipe *Pipeline) process(b *batch) {
	epoch := pipe.epoch.Inc()
	accepted, err := pipe.handler.TryHandleBatch(b.txs)
	if err != nil {
		pipe.log.Errorf("epoch %d: batch dropped, pool unchanged: %v", epoch, err)
	}
	pipe.log.Debugf("epoch %d: %d transactions IN, %d accepted", epoch, len(b.txs), len(accepted))
	if b.onDone != nil {
		b.onDone(epoch, accepted)
	}
}

// Stop processes batches already submitted and waits until the consumer exits.
// The pipeline must be started
func (pipe *Pipeline) Stop() {
	pipe.mutex.Lock()
	if !pipe.stopped.Swap(true) {
		pipe.queue.Close()
	}
	pipe.mutex.Unlock()

	<-pipe.done
}

func (pipe *Pipeline) IsStopped() bool {
	return pipe.stopped.Load()
}

// Submit queues the batch. onDone is called from the consumer goroutine with the accepted transactions.
// Returns false if the pipeline is stopped
func (pipe *Pipeline) Submit(txs []*ledger.Transaction, onDone func(epoch uint64, accepted []*ledger.Transaction)) bool {
	pipe.mutex.Lock()
	defer pipe.mutex.Unlock()

	if pipe.stopped.Load() {
		return false
	}
	pipe.queue.Write(&batch{
		txs:    txs,
		onDone: onDone,
	})
	return true
}

// Epoch is the number of processed batches
func (pipe *Pipeline) Epoch() uint64 {
	return pipe.epoch.Load()
}
