package schema

import "github.com/gogpu/khrgraph/ir"

// VideoExtension namespaces the video playback operations.
const VideoExtension = "GOOG_video"

// Video playback operations.
const (
	OpVideoPlay  = "video/play"
	OpVideoPause = "video/pause"
	OpVideoState = "video/state"
)

func videoOps() []*ir.OpSchema {
	return []*ir.OpSchema{
		ir.NewOpSchema(OpVideoPlay).
			WithExtension(VideoExtension).
			FlowIn(ir.FlowInDefault).
			FlowOut(ir.FlowOutDefault).
			ValueIn("video", nil, ir.SigInt).
			ValueIn("playhead", nil, ir.SigFloat),

		ir.NewOpSchema(OpVideoPause).
			WithExtension(VideoExtension).
			FlowIn(ir.FlowInDefault).
			FlowOut(ir.FlowOutDefault).
			ValueIn("video", nil, ir.SigInt),

		ir.NewOpSchema(OpVideoState).
			WithExtension(VideoExtension).
			ValueIn("video", nil, ir.SigInt).
			ValueOut("playhead", nil, ir.SigFloat).
			ValueOut("playing", nil, ir.SigBool),
	}
}
