package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "case").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "not_a_record":
			return "レコードではありません"
		case "not_a_sequence":
			return "シーケンスではありません"
		case "not_a_map":
			return "マップではありません"
		case "not_a_variant":
			return "バリアントではありません"
		case "field_not_found":
			return "フィールドが見つかりません"
		case "field_exists":
			return "フィールドが既に存在します"
		case "key_not_found":
			return "キーが見つかりません"
		case "index_out_of_range":
			return "インデックスが範囲外です"
		case "not_single_field":
			return "単一フィールドのレコードではありません"
		case "type_mismatch":
			return "型が一致しません"
		case "conversion_error":
			return "変換エラー"
		case "overflow":
			return "オーバーフロー"
		case "division_by_zero":
			return "ゼロ除算"
		case "no_input":
			return "入力がありません"
		case "explicit_fail":
			return "明示的な失敗"
		case "split_length_mismatch":
			return "分割結果の長さが一致しません"
		case "unknown_tag":
			return "未知のタグです"
		case "unresolved_default":
			return "デフォルト値が解決されていません"
		case "max_depth":
			return "ネストが深すぎます"
		}
	default: // "en"
		switch code {
		case "not_a_record":
			return "not a record"
		case "not_a_sequence":
			return "not a sequence"
		case "not_a_map":
			return "not a map"
		case "not_a_variant":
			return "not a variant"
		case "field_not_found":
			return "field not found"
		case "field_exists":
			return "field already exists"
		case "key_not_found":
			return "map key not found"
		case "index_out_of_range":
			return "index out of range"
		case "not_single_field":
			return "record does not have exactly one field"
		case "case_mismatch":
			return "variant case does not match"
		case "type_mismatch":
			return "type mismatch"
		case "conversion_error":
			return "conversion error"
		case "overflow":
			return "overflow"
		case "division_by_zero":
			return "division by zero"
		case "no_input":
			return "no input value supplied"
		case "explicit_fail":
			return "explicit failure"
		case "split_length_mismatch":
			return "split result length mismatch"
		case "empty_sequence":
			return "empty sequence"
		case "empty_map":
			return "empty map"
		case "unknown_tag":
			return "unknown tag"
		case "unresolved_default":
			return "unresolved default value"
		case "max_depth":
			return "maximum nesting depth exceeded"
		case "encode_failed":
			return "encoding to dynamic value failed"
		case "decode_failed":
			return "decoding from dynamic value failed"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
