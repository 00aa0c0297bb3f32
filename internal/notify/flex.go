package notify

import (
	"time"

	"github.com/kpphospital/mch-appointments/internal/appointment"
)

const (
	headerColor = "#f87171"
	labelColor  = "#8C8C8C"
	valueColor  = "#444444"
)

// PushRequest is the body of a LINE push message call.
type PushRequest struct {
	To       string        `json:"to"`
	Messages []FlexMessage `json:"messages"`
}

// FlexMessage is a LINE Flex message carrying a single bubble.
type FlexMessage struct {
	Type     string     `json:"type"`
	AltText  string     `json:"altText"`
	Contents FlexBubble `json:"contents"`
}

// FlexBubble is the container rendered in the chat.
type FlexBubble struct {
	Type   string         `json:"type"`
	Styles *BubbleStyles  `json:"styles,omitempty"`
	Header *FlexComponent `json:"header,omitempty"`
	Body   *FlexComponent `json:"body,omitempty"`
	Footer *FlexComponent `json:"footer,omitempty"`
}

// BubbleStyles sets per-block styling.
type BubbleStyles struct {
	Header *BlockStyle `json:"header,omitempty"`
}

// BlockStyle is the style of one bubble block.
type BlockStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// FlexComponent covers the box, text and separator components used here.
type FlexComponent struct {
	Type       string          `json:"type"`
	Layout     string          `json:"layout,omitempty"`
	Contents   []FlexComponent `json:"contents,omitempty"`
	Text       string          `json:"text,omitempty"`
	Weight     string          `json:"weight,omitempty"`
	Size       string          `json:"size,omitempty"`
	Color      string          `json:"color,omitempty"`
	Align      string          `json:"align,omitempty"`
	Margin     string          `json:"margin,omitempty"`
	Spacing    string          `json:"spacing,omitempty"`
	PaddingAll string          `json:"paddingAll,omitempty"`
	Flex       *int            `json:"flex,omitempty"`
	Wrap       bool            `json:"wrap,omitempty"`
}

// BuildFlexMessage renders the new-registration card posted to the staff
// group. sentAt is shown in the footer in loc.
func BuildFlexMessage(req appointment.Request, sentAt time.Time, loc *time.Location) FlexMessage {
	fullName := req.FirstName + " " + req.LastName

	body := []FlexComponent{
		receiptRow("ชื่อ-นามสกุล:", fullName),
		receiptRow("เลขบัตรประชาชน:", req.NationalIDOrDash()),
		receiptRow("เบอร์โทร:", req.Phone),
		separator("md"),
		receiptRow("บริการ:", req.Service),
		receiptRow("วันที่นัด:", req.AppointmentDate),
		receiptRow("เวลา:", req.AppointmentTime),
		separator("md"),
		{
			Type:   "box",
			Layout: "vertical",
			Margin: "md",
			Contents: []FlexComponent{
				{Type: "text", Text: "หมายเหตุ:", Size: "sm", Color: labelColor},
				{Type: "text", Text: req.NotesOrDash(), Wrap: true, Size: "sm", Color: valueColor, Margin: "sm"},
			},
		},
	}

	return FlexMessage{
		Type:    "flex",
		AltText: "มีผู้ลงทะเบียนใหม่: " + fullName,
		Contents: FlexBubble{
			Type:   "bubble",
			Styles: &BubbleStyles{Header: &BlockStyle{BackgroundColor: headerColor}},
			Header: &FlexComponent{
				Type:       "box",
				Layout:     "vertical",
				PaddingAll: "20px",
				Contents: []FlexComponent{
					{Type: "text", Text: "💖 มีผู้ลงทะเบียนใหม่ค่ะ", Weight: "bold", Size: "lg", Color: "#FFFFFF"},
					{Type: "text", Text: "งานส่งเสริมสุขภาพแม่และเด็ก", Size: "sm", Color: "#FFFFFFCC"},
				},
			},
			Body: &FlexComponent{
				Type:       "box",
				Layout:     "vertical",
				Spacing:    "md",
				PaddingAll: "20px",
				Contents:   body,
			},
			Footer: &FlexComponent{
				Type:    "box",
				Layout:  "vertical",
				Spacing: "sm",
				Contents: []FlexComponent{
					{Type: "separator"},
					{
						Type:   "box",
						Layout: "vertical",
						Contents: []FlexComponent{{
							Type:   "text",
							Text:   "ข้อมูล ณ วันที่: " + appointment.FormatTimestamp(sentAt, loc),
							Color:  labelColor,
							Size:   "xs",
							Align:  "center",
							Margin: "md",
						}},
					},
				},
			},
		},
	}
}

func receiptRow(label, value string) FlexComponent {
	zero := 0
	return FlexComponent{
		Type:   "box",
		Layout: "horizontal",
		Contents: []FlexComponent{
			{Type: "text", Text: label, Size: "sm", Color: labelColor, Flex: &zero, Wrap: true},
			{Type: "text", Text: value, Size: "sm", Color: valueColor, Align: "end", Wrap: true},
		},
	}
}

func separator(margin string) FlexComponent {
	return FlexComponent{Type: "separator", Margin: margin}
}
