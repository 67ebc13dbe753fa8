// Package main provides localization for the clipforge CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":            "出力先",
		"Editing":           "編集",
		"Effects":           "エフェクト",
		"Video and Quality": "動画と品質",
		"Images":            "画像",
		"Debug":             "デバッグ",
		"Logging":           "ログ",
		"Backend":           "バックエンド",

		// Root command
		"Render, trim and inspect video clips":                                                                   "動画クリップのレンダリング、トリミング、解析",
		"clipforge applies transforms, timing edits and effects to videos and extracts thumbnails and metadata.": "clipforgeは動画に変形、タイミング編集、エフェクトを適用し、サムネイルとメタデータを抽出します。",

		// Commands
		"Render an edited copy of a video":         "編集した動画をレンダリング",
		"Extract still images at given timestamps": "指定した時刻の静止画を抽出",
		"Extract evenly spaced still images":       "等間隔の静止画を抽出",
		"Show video metadata":                      "動画のメタデータを表示",
		"Run the jobs described in a job file":     "ジョブファイルに記述されたジョブを実行",
		"Show version information":                 "バージョン情報を表示",
		"clipforge version %s":                     "clipforge バージョン %s",

		// Global flags
		"Engine configuration file (YAML)":     "エンジン設定ファイル（YAML）",
		"Path to the ffmpeg executable":        "ffmpeg実行ファイルのパス",
		"Path to the ffprobe executable":       "ffprobe実行ファイルのパス",
		"Maximum number of concurrent jobs":    "同時実行ジョブの最大数",
		"Enable debug output":                  "デバッグ出力を有効化",
		"Directory for debug output":           "デバッグ出力のディレクトリ",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Render flags
		"Output video file path (required)":                                "出力動画ファイルパス（必須）",
		"Output format (mp4, mov, webm); defaults to the output extension": "出力形式（mp4, mov, webm）。省略時は出力ファイルの拡張子",
		"Start time (e.g. 1.5s)":                                           "開始時刻（例: 1.5s）",
		"End time (e.g. 10s)":                                              "終了時刻（例: 10s）",
		"Playback speed multiplier":                                        "再生速度の倍率",
		"Drop the audio track":                                             "音声トラックを削除",
		"Crop rectangle in source pixels (x,y,width,height)":               "切り抜き範囲（元動画のピクセル、x,y,幅,高さ）",
		"Rotate by quarter turns clockwise":                                "時計回りに90度単位で回転",
		"Mirror horizontally":                                              "左右反転",
		"Mirror vertically":                                                "上下反転",
		"Uniform scale factor":                                             "拡大縮小率",
		"Convert to grayscale":                                             "グレースケールに変換",
		"Brightness offset (-255 to 255)":                                  "明るさの補正値（-255〜255）",
		"Gaussian blur radius":                                             "ガウスぼかしの半径",
		"Quality preset (low, medium, high)":                               "品質プリセット（low, medium, high）",
		"Target bitrate in Mbps (overrides quality preset)":                "目標ビットレート（Mbps、品質プリセットを上書き）",
		"Output frame rate (default: source rate)":                         "出力フレームレート（デフォルト: 元動画のレート）",

		// Image flags
		"Output directory for images":                               "画像の出力ディレクトリ",
		"Image format (jpeg, png, webp)":                            "画像形式（jpeg, png, webp）",
		"Target width in pixels":                                    "目標の幅（ピクセル）",
		"Target height in pixels":                                   "目標の高さ（ピクセル）",
		"Box fit (cover, contain)":                                  "フィット方法（cover, contain）",
		"Center-crop cover results to the exact target size":        "coverの結果を目標サイズに中央で切り抜く",
		"Image quality (1-100)":                                     "画質（1-100）",
		"Timestamps to extract (repeatable, e.g. --at 1s --at 2.5)": "抽出する時刻（複数指定可、例: --at 1s --at 2.5）",
		"Clamp timestamps past the end to the last frame":           "終端を超える時刻を最終フレームに丸める",
		"Number of evenly spaced frames":                            "等間隔に抽出するフレーム数",
		"Print the report as JSON":                                  "レポートをJSONで出力",

		// Runtime messages
		"Output saved to %s":                     "出力を %s に保存しました",
		"Saved %d images to %s":                  "%[2]s に %[1]d 枚の画像を保存しました",
		"Interrupted, shutting down...":          "中断されました。シャットダウン中...",
		"Error: %v":                              "エラー: %v",
		"Exactly one input argument is required": "入力ファイルを1つ指定してください",
		"A job file argument is required":        "ジョブファイルを指定してください",

		// Summary output
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",
		"Summary saved to %s":                                "サマリーを %s に保存しました",
		"Failed to write summary: %s":                        "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"Clip Summary": "クリップサマリー",
		"Generated":    "生成日時",
		"Item":         "項目",
		"Value":        "値",
		"N/A":          "該当なし",
		"Yes":          "あり",
		"No":           "なし",

		// Source section
		"Source":     "入力動画",
		"File":       "ファイル",
		"Duration":   "再生時間",
		"Resolution": "解像度",
		"Rotation":   "回転",
		"Container":  "コンテナ",
		"Codec":      "コーデック",
		"Frame Rate": "フレームレート",
		"Audio":      "音声",
		"Bitrate":    "ビットレート",
		"File Size":  "ファイルサイズ",

		// Render section
		"Render Settings": "レンダリング設定",
		"Output Format":   "出力形式",
		"Range":           "範囲",
		"Start":           "先頭",
		"End":             "末尾",
		"Speed":           "速度",
		"Enabled":         "有効",
		"Disabled":        "無効",
		"Target Bitrate":  "目標ビットレート",
		"Crop":            "切り抜き",
		"Flip":            "反転",
		"Horizontal":      "左右",
		"Vertical":        "上下",
		"Scale":           "拡大縮小",
		"Color Matrices":  "カラーマトリクス",
		"Blur Radius":     "ぼかし半径",

		// Output section
		"Path":      "パス",
		"Format":    "形式",
		"Frames":    "フレーム数",
		"Elapsed":   "処理時間",
		"Timestamp": "時刻",
	})
}
