package finsight

// Message is a single conversation entry. Messages are immutable once
// created: surfaces append them in creation order and never edit or
// remove individual entries.
type Message struct {
	Role Role
	Text string
}
