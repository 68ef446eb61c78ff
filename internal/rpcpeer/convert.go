package rpcpeer

import "chordring/internal/domain"

// ToMsg encodes a domain.NodeRef for the wire. The zero-value NodeRef
// encodes as the empty-id/empty-addr absent marker.
func ToMsg(n domain.NodeRef) NodeRefMsg {
	if n.IsZero() {
		return NodeRefMsg{}
	}
	return NodeRefMsg{Id: n.ID.ToDecimalString(), Addr: n.Addr}
}

// FromMsg decodes a wire NodeRefMsg into a domain.NodeRef. It returns
// (zero, false) for the absent marker.
func FromMsg(sp domain.Space, m NodeRefMsg) (domain.NodeRef, bool, error) {
	if m.isAbsent() {
		return domain.NodeRef{}, false, nil
	}
	id, err := sp.FromDecimalString(m.Id)
	if err != nil {
		return domain.NodeRef{}, false, err
	}
	return domain.NodeRef{ID: id, Addr: m.Addr}, true, nil
}
