package mediaconvert

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"
)

const audioSelector = "Audio Selector 1"

// webmVP8Settings describes a single WEBM output: VP8 video at 2.5 Mbps VBR,
// 24 fps, with OPUS audio.
func webmVP8Settings(source, destination string) *types.JobSettings {
	return &types.JobSettings{
		TimecodeConfig: &types.TimecodeConfig{Source: types.TimecodeSourceEmbedded},
		FollowSource:   aws.Int32(1),
		Inputs: []types.Input{
			{
				AudioSelectors: map[string]types.AudioSelector{
					audioSelector: {DefaultSelection: types.AudioDefaultSelectionDefault},
				},
				TimecodeSource: types.InputTimecodeSourceEmbedded,
				FileInput:      aws.String(source),
			},
		},
		OutputGroups: []types.OutputGroup{
			{
				Name: aws.String("File Group"),
				Outputs: []types.Output{
					{
						ContainerSettings: &types.ContainerSettings{Container: types.ContainerTypeWebm},
						VideoDescription: &types.VideoDescription{
							CodecSettings: &types.VideoCodecSettings{
								Codec: types.VideoCodecVp8,
								Vp8Settings: &types.Vp8Settings{
									RateControlMode:      types.Vp8RateControlModeVbr,
									Bitrate:              aws.Int32(2500000),
									FramerateControl:     types.Vp8FramerateControlSpecified,
									FramerateNumerator:   aws.Int32(24),
									FramerateDenominator: aws.Int32(1),
								},
							},
						},
						AudioDescriptions: []types.AudioDescription{
							{
								AudioSourceName: aws.String(audioSelector),
								CodecSettings: &types.AudioCodecSettings{
									Codec:        types.AudioCodecOpus,
									OpusSettings: &types.OpusSettings{},
								},
							},
						},
					},
				},
				OutputGroupSettings: &types.OutputGroupSettings{
					Type:              types.OutputGroupTypeFileGroupSettings,
					FileGroupSettings: &types.FileGroupSettings{Destination: aws.String(destination)},
				},
			},
		},
	}
}
