package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Job lifecycle (engine)
		"Job %s started (%s)":           "ジョブ %s を開始しました (%s)",
		"Job %s completed":              "ジョブ %s が完了しました",
		"Job %s cancelled":              "ジョブ %s はキャンセルされました",
		"Job %s failed: %v":             "ジョブ %s が失敗しました: %v",
		"Output saved to %s":            "出力を %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Render
		"Rendering %s to %s: %dx%d, %d frames":  "%s を %s にレンダリング中: %dx%d, %d フレーム",
		"Decoder reports %dx%d, metadata %dx%d": "デコーダーは %dx%d、メタデータは %dx%d を報告しています",

		// Encode stage
		"Encoding %dx%d at %.1f fps": "%dx%d を %.1f fps でエンコード中",
		"Encoded frame %d/%d":        "フレーム %d/%d をエンコードしました",
		"Video encoded: %d bytes":    "動画エンコード完了: %d バイト",

		// Frame extraction
		"Extracting %d frames from %s": "%[2]s から %[1]d フレームを抽出中",
		"Sampling %d frames from %s":   "%[2]s から %[1]d フレームをサンプリング中",

		// Metadata
		"Detected %s container for %s":       "%[2]s は %[1]s コンテナです",
		"Metadata for %s: %dx%d, %v, %d bps": "%s のメタデータ: %dx%d, %v, %d bps",

		// Warnings
		"Failed to save debug output: %v": "デバッグ出力の保存に失敗しました: %v",
	})
}
