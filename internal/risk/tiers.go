package risk

type Tier int

const (
	Low Tier = iota
	Medium
	High
)

func (t Tier) String() string {
	switch t {
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "low"
	}
}

// Band is the fixed copy shown for a tier.
type Band struct {
	Tier           Tier
	Level          string
	Class          string
	Recommendation string
	Actions        []string
}

// Percentage cut-offs: [0,30) low, [30,60) medium, [60,100] high.
const (
	mediumFrom = 30
	highFrom   = 60
)

var bands = [...]Band{
	Low: {
		Tier:           Low,
		Level:          "Düşük Risk",
		Class:          "low-risk",
		Recommendation: "Mevcut sağlık durumunuz iyi görünüyor. Düzenli kontroller ve sağlıklı yaşam tarzını sürdürün.",
		Actions: []string{
			"Yılda bir kez rutin sağlık kontrolü yaptırın",
			"Sağlıklı beslenme alışkanlıklarını sürdürün",
			"Düzenli egzersiz yapın",
			"Stres yönetimi tekniklerini uygulayın",
		},
	},
	Medium: {
		Tier:           Medium,
		Level:          "Orta Risk",
		Class:          "medium-risk",
		Recommendation: "Dikkat edilmesi gereken faktörler bulunuyor. Doktor kontrolü ve yaşam tarzı değişiklikleri önerilir.",
		Actions: []string{
			"6 ayda bir doktor kontrolü yaptırın",
			"Beslenme uzmanına danışın",
			"Egzersiz programınızı artırın",
			"Zararlı alışkanlıklardan kaçının",
			"Tarama testlerini aksatmayın",
		},
	},
	High: {
		Tier:           High,
		Level:          "Yüksek Risk",
		Class:          "high-risk",
		Recommendation: "Acil doktor konsültasyonu ve detaylı inceleme gerekiyor. Hemen bir uzmana başvurun.",
		Actions: []string{
			"En kısa sürede bir uzmana başvurun",
			"Kapsamlı sağlık taraması yaptırın",
			"Genetik danışmanlık alın",
			"Yaşam tarzınızı radikal şekilde değiştirin",
			"Düzenli takip programına başlayın",
		},
	},
}

// BandFor maps a risk percentage to its band. Callers get a copy of the
// actions so the table cannot be modified.
func BandFor(percentage int) Band {
	var b Band
	switch {
	case percentage < mediumFrom:
		b = bands[Low]
	case percentage < highFrom:
		b = bands[Medium]
	default:
		b = bands[High]
	}
	b.Actions = append([]string(nil), b.Actions...)
	return b
}
