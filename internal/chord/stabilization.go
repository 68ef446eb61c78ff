package chord

import (
	"context"
	"time"

	"chordring/internal/domain"
	"chordring/internal/logger"
	"chordring/internal/rpcpeer"
)

func (n *Node) stabilizeLoop(ctx context.Context) {
	defer n.wg.Done()
	ticker := time.NewTicker(n.stabilizeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.stabilize(ctx)
		}
	}
}

func (n *Node) fixFingersLoop(ctx context.Context) {
	defer n.wg.Done()
	ticker := time.NewTicker(n.fixFingersInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.fixFingerTick(ctx)
		}
	}
}

func (n *Node) checkPredecessorLoop(ctx context.Context) {
	defer n.wg.Done()
	ticker := time.NewTicker(n.checkPredecessorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.checkPredecessor(ctx)
		}
	}
}

// stabilize implements §4.5's stabilize(): ask the successor for its
// predecessor, adopt it if it lies strictly between self and
// successor, then notify the (possibly updated) successor of self.
func (n *Node) stabilize(ctx context.Context) {
	self := n.rt.Self()
	succ, ok := n.rt.Successor()
	if !ok {
		return
	}

	cli, err := n.cp.GetFromPool(succ.Addr)
	if err != nil {
		n.lgr.Warn("stabilize: dial successor failed", logger.F("peer", succ.Addr), logger.F("err", err))
		n.stats.observeRPCFailure()
		return
	}

	gctx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	x, err := rpcpeer.GetPredecessor(gctx, cli, n.rt.Space())
	cancel()
	if err != nil {
		n.lgr.Warn("stabilize: get_predecessor failed", logger.F("peer", succ.Addr), logger.F("err", err))
		n.stats.observeRPCFailure()
		return
	}

	if x != nil && !x.ID.Equal(self.ID) && domain.InRange(x.ID, self.ID, succ.ID, false, false) {
		n.rt.SetSuccessor(*x)
		succ = *x
		cli, err = n.cp.GetFromPool(succ.Addr)
		if err != nil {
			n.lgr.Warn("stabilize: dial new successor failed", logger.F("peer", succ.Addr), logger.F("err", err))
			n.stats.observeRPCFailure()
			return
		}
	}

	nctx, ncancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	err = rpcpeer.Notify(nctx, cli, self)
	ncancel()
	if err != nil {
		n.lgr.Warn("stabilize: notify failed", logger.F("peer", succ.Addr), logger.F("err", err))
		n.stats.observeRPCFailure()
	}
}

// fixFingerTick advances next_finger and repairs the corresponding
// finger table entry, implementing §4.5's fix_fingers().
func (n *Node) fixFingerTick(ctx context.Context) {
	n.nextFingerMu.Lock()
	i := n.nextFinger
	n.nextFinger = (n.nextFinger + 1) % n.rt.Space().Bits
	n.nextFingerMu.Unlock()

	start := n.fingerStart(i)
	fctx, cancel := context.WithTimeout(ctx, n.rpcTimeout)
	owner, err := n.FindSuccessor(fctx, start)
	cancel()
	if err != nil {
		n.lgr.Debug("fix_fingers: lookup failed",
			logger.F("finger_index", i),
			logger.F("target", start.ToHexString(true)),
			logger.F("err", err))
		return
	}
	n.rt.SetFinger(i, owner)
}

// checkPredecessor implements §4.5's check_predecessor(): ping the
// predecessor and clear it on any failure.
func (n *Node) checkPredecessor(ctx context.Context) {
	pred, ok := n.rt.Predecessor()
	if !ok {
		return
	}
	cli, err := n.cp.GetFromPool(pred.Addr)
	if err != nil {
		n.rt.ClearPredecessor()
		return
	}
	pctx, cancel := context.WithTimeout(ctx, n.pingTimeout)
	err = rpcpeer.Ping(pctx, cli)
	cancel()
	if err != nil {
		n.lgr.Info("check_predecessor: predecessor unresponsive, clearing",
			logger.F("peer", pred.Addr), logger.F("err", err))
		n.rt.ClearPredecessor()
	}
}

// notify is the RPC-invoked half of §4.5: adopt p as predecessor when
// none is set, or when p lies strictly between the current
// predecessor and self.
func (n *Node) notify(p domain.NodeRef) {
	pred, ok := n.rt.Predecessor()
	self := n.rt.Self()

	if !ok {
		n.rt.SetPredecessor(p)
		n.lgr.Debug("notify: adopted predecessor (was absent)", logger.FNode("predecessor", &p))
		return
	}
	if p.ID.Equal(pred.ID) {
		return
	}
	if domain.InRange(p.ID, pred.ID, self.ID, false, false) {
		n.rt.SetPredecessor(p)
		n.lgr.Debug("notify: updated predecessor",
			logger.FNode("old", &pred), logger.FNode("new", &p))
	}
}
