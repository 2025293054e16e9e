package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// CSVChatImporter handles chat logs exported as CSV. The header row names the
// columns (time/sender/message and common synonyms); without a recognised
// header the columns are read as time, sender, message.
type CSVChatImporter struct{}

var (
	timeColumns   = []string{"time", "timestamp", "date", "datetime", "时间"}
	senderColumns = []string{"sender", "from", "author", "name", "user", "role", "发送者"}
	textColumns   = []string{"message", "text", "content", "body", "内容", "消息"}
)

func (p *CSVChatImporter) Import(r io.Reader, opts Options) (*Imported, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return &Imported{Document: chatDocument(nil, opts)}, nil
	}

	ti, si, xi := 0, 1, 2
	rows := records
	if h := records[0]; hasColumn(h, textColumns) {
		ti, si, xi = columnIndex(h, timeColumns), columnIndex(h, senderColumns), columnIndex(h, textColumns)
		rows = records[1:]
	}

	msgs := make([]chatMessage, 0, len(rows))
	for n, row := range rows {
		if xi >= len(row) {
			return nil, fmt.Errorf("第 %d 行缺少消息列", n+1)
		}
		msg := chatMessage{Sender: cell(row, si), Raw: cell(row, ti), Text: row[xi]}
		if t, ok := parseTime(msg.Raw); ok {
			msg.Time = t
		}
		msgs = append(msgs, msg)
	}
	return &Imported{Document: chatDocument(msgs, opts)}, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func hasColumn(header, names []string) bool {
	return columnIndex(header, names) >= 0
}

func columnIndex(header, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

// JSONChatImporter handles chat logs stored as a JSON array of messages, or
// an object with a "messages" array (conversation export).
type JSONChatImporter struct{}

type jsonMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Time      string `json:"time"`
	Sender    string `json:"sender"`
	AgentName string `json:"agent_name"`
}

type jsonConversation struct {
	Name     string        `json:"name"`
	Messages []jsonMessage `json:"messages"`
}

func (p *JSONChatImporter) Import(r io.Reader, opts Options) (*Imported, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var list []jsonMessage
	name := ""
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		var conv jsonConversation
		if err := json.Unmarshal(raw, &conv); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		list, name = conv.Messages, conv.Name
	}

	msgs := make([]chatMessage, 0, len(list))
	for _, m := range list {
		msg := chatMessage{
			Sender: firstNonEmpty(m.Sender, m.AgentName, m.Role),
			Raw:    firstNonEmpty(m.Timestamp, m.Time),
			Text:   firstNonEmpty(m.Content, m.Text),
		}
		if t, ok := parseTime(msg.Raw); ok {
			msg.Time = t
		}
		msgs = append(msgs, msg)
	}
	doc := chatDocument(msgs, opts)
	if name != "" {
		doc.Meta.Title = name
	}
	return &Imported{Document: doc}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
