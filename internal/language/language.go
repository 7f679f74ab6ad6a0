package language

import (
	"slices"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language groups in corpus order; a group's index is its lang_group_id.
const (
	GroupWesternEuropean        = "western_european_we"
	GroupEasternEuropean        = "eastern_european_ee"
	GroupCentralAsiaMiddleNorth = "central_asia_middle_north_african_cmn"
	GroupSubSaharanAfrican      = "sub_saharan_african_ssa"
	GroupSouthAsian             = "south_asian_sa"
	GroupSouthEastAsian         = "south_east_asian_sea"
	GroupCJK                    = "chinese_japanase_korean_cjk"
)

var groups = []string{
	GroupWesternEuropean,
	GroupEasternEuropean,
	GroupCentralAsiaMiddleNorth,
	GroupSubSaharanAfrican,
	GroupSouthAsian,
	GroupSouthEastAsian,
	GroupCJK,
}

type entry struct {
	config string // corpus configuration code
	name   string // corpus language name
	group  string
}

var languages = []entry{
	{"af_za", "Afrikaans", GroupSubSaharanAfrican},
	{"am_et", "Amharic", GroupSubSaharanAfrican},
	{"ar_eg", "Arabic", GroupCentralAsiaMiddleNorth},
	{"as_in", "Assamese", GroupSouthAsian},
	{"ast_es", "Asturian", GroupWesternEuropean},
	{"az_az", "Azerbaijani", GroupCentralAsiaMiddleNorth},
	{"be_by", "Belarusian", GroupEasternEuropean},
	{"bg_bg", "Bulgarian", GroupEasternEuropean},
	{"bn_in", "Bengali", GroupSouthAsian},
	{"bs_ba", "Bosnian", GroupWesternEuropean},
	{"ca_es", "Catalan", GroupWesternEuropean},
	{"ceb_ph", "Cebuano", GroupSouthEastAsian},
	{"ckb_iq", "Sorani-Kurdish", GroupCentralAsiaMiddleNorth},
	{"cmn_hans_cn", "Mandarin Chinese", GroupCJK},
	{"cs_cz", "Czech", GroupEasternEuropean},
	{"cy_gb", "Welsh", GroupWesternEuropean},
	{"da_dk", "Danish", GroupWesternEuropean},
	{"de_de", "German", GroupWesternEuropean},
	{"el_gr", "Greek", GroupWesternEuropean},
	{"en_us", "English", GroupWesternEuropean},
	{"es_419", "Spanish", GroupWesternEuropean},
	{"et_ee", "Estonian", GroupEasternEuropean},
	{"fa_ir", "Persian", GroupCentralAsiaMiddleNorth},
	{"ff_sn", "Fula", GroupSubSaharanAfrican},
	{"fi_fi", "Finnish", GroupWesternEuropean},
	{"fil_ph", "Filipino", GroupSouthEastAsian},
	{"fr_fr", "French", GroupWesternEuropean},
	{"ga_ie", "Irish", GroupWesternEuropean},
	{"gl_es", "Galician", GroupWesternEuropean},
	{"gu_in", "Gujarati", GroupSouthAsian},
	{"ha_ng", "Hausa", GroupSubSaharanAfrican},
	{"he_il", "Hebrew", GroupCentralAsiaMiddleNorth},
	{"hi_in", "Hindi", GroupSouthAsian},
	{"hr_hr", "Croatian", GroupWesternEuropean},
	{"hu_hu", "Hungarian", GroupWesternEuropean},
	{"hy_am", "Armenian", GroupEasternEuropean},
	{"id_id", "Indonesian", GroupSouthEastAsian},
	{"ig_ng", "Igbo", GroupSubSaharanAfrican},
	{"is_is", "Icelandic", GroupWesternEuropean},
	{"it_it", "Italian", GroupWesternEuropean},
	{"ja_jp", "Japanese", GroupCJK},
	{"jv_id", "Javanese", GroupSouthEastAsian},
	{"ka_ge", "Georgian", GroupEasternEuropean},
	{"kam_ke", "Kamba", GroupSubSaharanAfrican},
	{"kea_cv", "Kabuverdianu", GroupWesternEuropean},
	{"kk_kz", "Kazakh", GroupCentralAsiaMiddleNorth},
	{"km_kh", "Khmer", GroupSouthEastAsian},
	{"kn_in", "Kannada", GroupSouthAsian},
	{"ko_kr", "Korean", GroupCJK},
	{"ky_kg", "Kyrgyz", GroupCentralAsiaMiddleNorth},
	{"lb_lu", "Luxembourgish", GroupWesternEuropean},
	{"lg_ug", "Ganda", GroupSubSaharanAfrican},
	{"ln_cd", "Lingala", GroupSubSaharanAfrican},
	{"lo_la", "Lao", GroupSouthEastAsian},
	{"lt_lt", "Lithuanian", GroupEasternEuropean},
	{"luo_ke", "Luo", GroupSubSaharanAfrican},
	{"lv_lv", "Latvian", GroupEasternEuropean},
	{"mi_nz", "Maori", GroupSouthEastAsian},
	{"mk_mk", "Macedonian", GroupEasternEuropean},
	{"ml_in", "Malayalam", GroupSouthAsian},
	{"mn_mn", "Mongolian", GroupCentralAsiaMiddleNorth},
	{"mr_in", "Marathi", GroupSouthAsian},
	{"ms_my", "Malay", GroupSouthEastAsian},
	{"mt_mt", "Maltese", GroupWesternEuropean},
	{"my_mm", "Burmese", GroupSouthEastAsian},
	{"nb_no", "Norwegian", GroupWesternEuropean},
	{"ne_np", "Nepali", GroupSouthAsian},
	{"nl_nl", "Dutch", GroupWesternEuropean},
	{"nso_za", "Northern-Sotho", GroupSubSaharanAfrican},
	{"ny_mw", "Nyanja", GroupSubSaharanAfrican},
	{"oc_fr", "Occitan", GroupWesternEuropean},
	{"om_et", "Oromo", GroupSubSaharanAfrican},
	{"or_in", "Oriya", GroupSouthAsian},
	{"pa_in", "Punjabi", GroupSouthAsian},
	{"pl_pl", "Polish", GroupEasternEuropean},
	{"ps_af", "Pashto", GroupCentralAsiaMiddleNorth},
	{"pt_br", "Portuguese", GroupWesternEuropean},
	{"ro_ro", "Romanian", GroupEasternEuropean},
	{"ru_ru", "Russian", GroupEasternEuropean},
	{"sd_in", "Sindhi", GroupSouthAsian},
	{"sk_sk", "Slovak", GroupEasternEuropean},
	{"sl_si", "Slovenian", GroupEasternEuropean},
	{"sn_zw", "Shona", GroupSubSaharanAfrican},
	{"so_so", "Somali", GroupSubSaharanAfrican},
	{"sr_rs", "Serbian", GroupEasternEuropean},
	{"sv_se", "Swedish", GroupWesternEuropean},
	{"sw_ke", "Swahili", GroupSubSaharanAfrican},
	{"ta_in", "Tamil", GroupSouthAsian},
	{"te_in", "Telugu", GroupSouthAsian},
	{"tg_tj", "Tajik", GroupCentralAsiaMiddleNorth},
	{"th_th", "Thai", GroupSouthEastAsian},
	{"tr_tr", "Turkish", GroupCentralAsiaMiddleNorth},
	{"uk_ua", "Ukrainian", GroupEasternEuropean},
	{"umb_ao", "Umbundu", GroupSubSaharanAfrican},
	{"ur_pk", "Urdu", GroupSouthAsian},
	{"uz_uz", "Uzbek", GroupCentralAsiaMiddleNorth},
	{"vi_vn", "Vietnamese", GroupSouthEastAsian},
	{"wo_sn", "Wolof", GroupSubSaharanAfrican},
	{"xh_za", "Xhosa", GroupSubSaharanAfrican},
	{"yo_ng", "Yoruba", GroupSubSaharanAfrican},
	{"yue_hant_hk", "Cantonese Chinese", GroupCJK},
	{"zu_za", "Zulu", GroupSubSaharanAfrican},
}

// Index maps built at init time.
var (
	byConfig map[string]int
	configs  []string
)

func init() {
	configs = make([]string, len(languages))
	for i, e := range languages {
		configs[i] = e.config
	}
	slices.Sort(configs)
	byConfig = make(map[string]int, len(languages))
	for i := range languages {
		byConfig[languages[i].config] = i
	}
}

// Language describes one corpus configuration.
type Language struct {
	Config  string
	Name    string
	Group   string
	ID      int
	GroupID int
}

// Lookup returns the language for a configuration code such as "tg_tj".
func Lookup(config string) (Language, bool) {
	config = normalize(config)
	idx, ok := byConfig[config]
	if !ok {
		return Language{}, false
	}
	e := languages[idx]
	id, _ := slices.BinarySearch(configs, e.config)
	return Language{
		Config:  e.config,
		Name:    e.name,
		Group:   e.group,
		ID:      id,
		GroupID: slices.Index(groups, e.group),
	}, true
}

// Configs returns every configuration code in id order.
func Configs() []string {
	return slices.Clone(configs)
}

// Tag converts a configuration code to a BCP 47 tag ("cmn_hans_cn" becomes
// cmn-Hans-CN). Unparseable codes yield language.Und.
func Tag(config string) xlanguage.Tag {
	tag, err := xlanguage.Parse(strings.ReplaceAll(normalize(config), "_", "-"))
	if err != nil {
		return xlanguage.Und
	}
	return tag
}

// DisplayName returns the English display name of a configuration, including
// its region (for example "Tajik (Tajikistan)"). Falls back to the corpus name
// and then to the uppercased code.
func DisplayName(config string) string {
	if strings.TrimSpace(config) == "" {
		return "Unknown"
	}
	if tag := Tag(config); tag != xlanguage.Und {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	if lang, ok := Lookup(config); ok {
		return lang.Name
	}
	return strings.ToUpper(strings.TrimSpace(config))
}

func normalize(config string) string {
	return strings.ToLower(strings.TrimSpace(config))
}
