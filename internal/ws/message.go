package ws

// FrameMessage is broadcast once per processed frame.
type FrameMessage struct {
	Type         string `json:"type"` // "frame"
	CamName      string `json:"cam_name"`
	FrameNum     int    `json:"frame_num"`
	Timestamp    int64  `json:"timestamp"`
	Objects      int    `json:"objects"`
	Positives    int    `json:"positives"`
	AlertRegions []int  `json:"alert_regions,omitempty"`
}

// AlertMessage is broadcast for every approved alert.
type AlertMessage struct {
	Type        string `json:"type"` // "alert"
	CamName     string `json:"cam_name"`
	RuleName    string `json:"rule_name"`
	RegionIndex int    `json:"region_index"`
	FrameNum    int    `json:"frame_num"`
	Timestamp   int64  `json:"timestamp"`
}

// NewFrameMessage creates a frame message.
func NewFrameMessage(camName string, frameNum int, timestamp int64) *FrameMessage {
	return &FrameMessage{
		Type:      "frame",
		CamName:   camName,
		FrameNum:  frameNum,
		Timestamp: timestamp,
	}
}

// NewAlertMessage creates an alert message.
func NewAlertMessage(camName, ruleName string, regionIndex, frameNum int, timestamp int64) *AlertMessage {
	return &AlertMessage{
		Type:        "alert",
		CamName:     camName,
		RuleName:    ruleName,
		RegionIndex: regionIndex,
		FrameNum:    frameNum,
		Timestamp:   timestamp,
	}
}
