package chat

var (
	defaultOpeners = []string{
		"Anladım, bu konuda şöyle bir bilgi verebilirim: ",
		"Tabii ki, bu önemli bir konu. Bilmeniz gerekenler şunlar: ",
		"Bu konuda sıkça sorulan bilgilerden biri: ",
	}
	defaultDisclaimers = []string{
		"\n\nEğer durum devam ederse mutlaka bir doktora danışın.",
		"\n\nUnutmayın, her bireyin durumu farklıdır. Profesyonel destek alın.",
		"\n\nSağlık konularında emin olmadığınız durumlarda mutlaka bir uzmana başvurun.",
	}
)

// Composer frames a matched answer with an opening phrase and a closing
// medical disclaimer.
type Composer struct {
	Openers     []string
	Disclaimers []string
	Selector    Selector
}

func NewComposer(sel Selector) *Composer {
	if sel == nil {
		sel = RandomSelector{}
	}
	return &Composer{
		Openers:     defaultOpeners,
		Disclaimers: defaultDisclaimers,
		Selector:    sel,
	}
}

func (c *Composer) Compose(answer string) string {
	return choose(c.Selector, c.Openers) + answer + choose(c.Selector, c.Disclaimers)
}
