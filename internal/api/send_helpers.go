// ABOUTME: Convenience senders for text, image, voice, and file messages
// ABOUTME: Attachment-bearing sends upload first and fail locally if that fails

package api

import "context"

// errorStream returns an already-terminated event sequence carrying a
// single local error event.
func errorStream(msg string) <-chan SSEEvent {
	events := make(chan SSEEvent, 1)
	events <- errorEvent(msg)
	close(events)
	return events
}

// SendTextMessage sends plain text.
func (c *Client) SendTextMessage(ctx context.Context, sessionID, text string, opts *SendOptions) <-chan SSEEvent {
	return c.SendMessage(ctx, sessionID, TextMessage(text), opts)
}

// SendImageMessage uploads an image and sends it, with optional
// caption text. If the upload fails, the send endpoint is never
// contacted and the stream carries one local error event.
func (c *Client) SendImageMessage(ctx context.Context, sessionID, imagePath, text string, opts *SendOptions) <-chan SSEEvent {
	result, ok := c.UploadFile(ctx, imagePath)
	if !ok {
		return errorStream("image upload failed")
	}

	var parts []MessagePart
	if text != "" {
		parts = append(parts, MessagePart{Type: EventPlain, Text: text})
	}
	parts = append(parts, MessagePart{Type: EventImage, AttachmentID: result.AttachmentID})

	return c.SendMessage(ctx, sessionID, PartsMessage(parts...), opts)
}

// SendVoiceMessage uploads an audio file and sends it as a voice
// message.
func (c *Client) SendVoiceMessage(ctx context.Context, sessionID, audioPath string, opts *SendOptions) <-chan SSEEvent {
	result, ok := c.UploadFile(ctx, audioPath)
	if !ok {
		return errorStream("audio upload failed")
	}

	parts := []MessagePart{{Type: EventRecord, AttachmentID: result.AttachmentID}}
	return c.SendMessage(ctx, sessionID, PartsMessage(parts...), opts)
}

// SendFileMessage uploads an arbitrary file and sends it, with
// optional accompanying text.
func (c *Client) SendFileMessage(ctx context.Context, sessionID, filePath, text string, opts *SendOptions) <-chan SSEEvent {
	result, ok := c.UploadFile(ctx, filePath)
	if !ok {
		return errorStream("file upload failed")
	}

	var parts []MessagePart
	if text != "" {
		parts = append(parts, MessagePart{Type: EventPlain, Text: text})
	}
	parts = append(parts, MessagePart{Type: EventFile, AttachmentID: result.AttachmentID})

	return c.SendMessage(ctx, sessionID, PartsMessage(parts...), opts)
}
