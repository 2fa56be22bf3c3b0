package moderation

// ExtractContent normalizes a message into the text and entities the
// scoring engine operates on. The message body takes precedence over the
// media caption; entities are taken only from the source actually used so
// caption entities never leak into body text offsets. Absent fields
// degrade to an empty result.
func ExtractContent(msg *Message) (string, []Entity) {
	if msg == nil {
		return "", nil
	}
	if msg.Text != "" {
		return msg.Text, msg.Entities
	}
	if msg.Caption != "" {
		return msg.Caption, msg.CaptionEntities
	}
	return "", nil
}
