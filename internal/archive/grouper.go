package archive

import "channel-archive/internal/source"

// GroupMessages partitions an oldest-first message sequence into logical
// post groups using pure adjacency on the group id: a message joins the
// open group only when its group id is non-zero and equals the open
// group's id; anything else closes the group and opens a new one.
//
// Grouping therefore relies on members of an album arriving contiguously.
// Non-contiguous reuse of a group id is not detected and yields two
// separate groups; this matches the ordering guarantee of the source
// stream and must not be "fixed" here.
func GroupMessages(messages []source.Message) [][]source.Message {
	var groups [][]source.Message
	var open []source.Message

	for _, msg := range messages {
		if len(open) == 0 || (msg.GroupedID != 0 && msg.GroupedID == open[len(open)-1].GroupedID) {
			open = append(open, msg)
			continue
		}
		groups = append(groups, open)
		open = []source.Message{msg}
	}
	if len(open) > 0 {
		groups = append(groups, open)
	}
	return groups
}
