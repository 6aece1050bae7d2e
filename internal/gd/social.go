package gd

import (
	"strings"

	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/wire"
)

// CommentType distinguishes level comments from profile posts.
type CommentType int

const (
	CommentLevel CommentType = iota
	CommentProfile
)

func (t CommentType) String() string {
	if t == CommentProfile {
		return "profile"
	}
	return "level"
}

// MarshalText renders the comment type in JSON.
func (t CommentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (t *CommentType) UnmarshalText(text []byte) error {
	v, err := parseName(text, "comment type", CommentLevel, CommentProfile)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Comment field indexes ("~" delimited).
const (
	commentLevelID  = 1
	commentBody     = 2
	commentPlayerID = 3
	commentLikes    = 4
	commentID       = 6
	commentSpam     = 7
	commentAge      = 9
	commentPercent  = 10
	commentModBadge = 11
	commentColor    = 12
)

// Comment is a level comment or a profile post.
type Comment struct {
	ID       int         `json:"id"`
	Type     CommentType `json:"type"`
	LevelID  int         `json:"level_id,omitempty"`
	Body     string      `json:"body"`
	Author   User        `json:"author"`
	Likes    int         `json:"likes"`
	Percent  int         `json:"percent,omitempty"`
	Age      string      `json:"age"`
	Spam     bool        `json:"spam"`
	ModBadge int         `json:"mod_badge,omitempty"`
	Color    string      `json:"color,omitempty"`
}

// CommentFromRecord parses a level comment record, "comment:user" with "~"
// fields on both sides.
func CommentFromRecord(record string) Comment {
	commentPart, userPart, _ := strings.Cut(record, ":")
	m := wire.ParseMap(commentPart, wire.DelimComment)
	c := Comment{
		ID:       m.Int(commentID),
		Type:     CommentLevel,
		LevelID:  m.Int(commentLevelID),
		Body:     m.Base64(commentBody),
		Likes:    m.Int(commentLikes),
		Percent:  m.Int(commentPercent),
		Age:      m.String(commentAge),
		Spam:     m.Bool(commentSpam),
		ModBadge: m.Int(commentModBadge),
		Color:    m.String(commentColor),
	}
	if userPart != "" {
		c.Author = UserFromMap(wire.ParseMap(userPart, wire.DelimComment))
	}
	c.Author.PlayerID = m.Int(commentPlayerID)
	return c
}

// ProfileCommentFromRecord parses an account comment record. The author is
// the profile owner, which the server does not repeat.
func ProfileCommentFromRecord(record string, author User) Comment {
	m := wire.ParseMap(record, wire.DelimComment)
	return Comment{
		ID:     m.Int(commentID),
		Type:   CommentProfile,
		Body:   m.Base64(commentBody),
		Author: author,
		Likes:  m.Int(commentLikes),
		Age:    m.String(commentAge),
		Spam:   m.Bool(commentSpam),
	}
}

// CommentPage is one page of comments.
type CommentPage struct {
	Comments []Comment     `json:"comments"`
	Page     wire.PageInfo `json:"page"`
}

// ParseLevelComments parses getGJComments and getGJCommentHistory bodies.
func ParseLevelComments(body string) CommentPage {
	sections := wire.Sections(body)
	records := splitNonEmpty(wire.Section(sections, 0), wire.DelimList)
	out := CommentPage{Comments: make([]Comment, 0, len(records)), Page: wire.Page(wire.Section(sections, 1))}
	for _, record := range records {
		out.Comments = append(out.Comments, CommentFromRecord(record))
	}
	return out
}

// ParseProfileComments parses a getGJAccountComments body.
func ParseProfileComments(body string, author User) CommentPage {
	sections := wire.Sections(body)
	records := splitNonEmpty(wire.Section(sections, 0), wire.DelimList)
	out := CommentPage{Comments: make([]Comment, 0, len(records)), Page: wire.Page(wire.Section(sections, 1))}
	for _, record := range records {
		out.Comments = append(out.Comments, ProfileCommentFromRecord(record, author))
	}
	return out
}

// Message field indexes.
const (
	messageID        = 1
	messageAccountID = 2
	messagePlayerID  = 3
	messageSubject   = 4
	messageBody      = 5
	messageName      = 6
	messageAge       = 7
	messageRead      = 8
	messageSent      = 9
)

// Message is a private message. Other is the sender for inbox messages and
// the recipient for sent ones.
type Message struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body,omitempty"`
	Other   User   `json:"other"`
	Age     string `json:"age"`
	Read    bool   `json:"read"`
	Sent    bool   `json:"sent"`
}

// MessageFromMap builds a Message from a ":"-delimited record. The body is
// only present in downloadGJMessage responses.
func MessageFromMap(m wire.Map) Message {
	msg := Message{
		ID:      m.Int(messageID),
		Subject: m.Base64(messageSubject),
		Other: User{
			Name:      m.String(messageName),
			PlayerID:  m.Int(messagePlayerID),
			AccountID: m.Int(messageAccountID),
		},
		Age:  m.String(messageAge),
		Read: m.Bool(messageRead),
		Sent: m.Bool(messageSent),
	}
	if m.Has(messageBody) {
		msg.Body = DecodeMessageBody(m.String(messageBody))
	}
	return msg
}

// DecodeMessageBody reverses the Base64+XOR encoding of message bodies.
func DecodeMessageBody(s string) string {
	raw, err := robtop.DecodeBase64(s)
	if err != nil {
		return ""
	}
	return string(robtop.XORCipher(raw, robtop.KeyMessage.String()))
}

// EncodeMessageBody applies the message body encoding.
func EncodeMessageBody(s string) string {
	return robtop.EncodeBase64(robtop.XORCipher([]byte(s), robtop.KeyMessage.String()))
}

// MessagePage is one page of messages.
type MessagePage struct {
	Messages []Message     `json:"messages"`
	Page     wire.PageInfo `json:"page"`
}

// ParseMessages parses a getGJMessages body.
func ParseMessages(body string) MessagePage {
	sections := wire.Sections(body)
	records := wire.ParseList(wire.Section(sections, 0), wire.DelimObject)
	out := MessagePage{Messages: make([]Message, 0, len(records)), Page: wire.Page(wire.Section(sections, 1))}
	for _, m := range records {
		out.Messages = append(out.Messages, MessageFromMap(m))
	}
	return out
}

// Friend request field indexes beyond the user fields.
const (
	requestID     = 32
	requestBody   = 35
	requestAge    = 37
	requestUnread = 41
)

// FriendRequest is an incoming or outgoing friend request.
type FriendRequest struct {
	ID     int    `json:"id"`
	Other  User   `json:"other"`
	Body   string `json:"body"`
	Age    string `json:"age"`
	Unread bool   `json:"unread"`
	Sent   bool   `json:"sent"`
}

// FriendRequestFromMap builds a FriendRequest from a ":"-delimited record.
func FriendRequestFromMap(m wire.Map, sent bool) FriendRequest {
	return FriendRequest{
		ID:     m.Int(requestID),
		Other:  UserFromMap(m),
		Body:   m.Base64(requestBody),
		Age:    m.String(requestAge),
		Unread: m.Bool(requestUnread),
		Sent:   sent,
	}
}

// FriendRequestPage is one page of friend requests.
type FriendRequestPage struct {
	Requests []FriendRequest `json:"requests"`
	Page     wire.PageInfo   `json:"page"`
}

// ParseFriendRequests parses a getGJFriendRequests body.
func ParseFriendRequests(body string, sent bool) FriendRequestPage {
	sections := wire.Sections(body)
	records := wire.ParseList(wire.Section(sections, 0), wire.DelimObject)
	out := FriendRequestPage{Requests: make([]FriendRequest, 0, len(records)), Page: wire.Page(wire.Section(sections, 1))}
	for _, m := range records {
		out.Requests = append(out.Requests, FriendRequestFromMap(m, sent))
	}
	return out
}
