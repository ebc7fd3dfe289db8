package converter

// stripDangling removes trailing tokens that carry no pitched onset, so a
// truncated voice never ends on a rest, a lone tie, or a directive with no
// note after it.
func stripDangling(tokens []token) []token {
	end := len(tokens)
	for end > 0 && !tokens[end-1].note {
		end--
	}
	return tokens[:end]
}

// truncateToLimit cuts a voice to at most limit characters at a token
// boundary. Already-fitting voices come back unchanged, which also makes
// the operation idempotent. The result is a new voice; the caller keeps
// the full one.
func truncateToLimit(e encodedVoice, limit int) encodedVoice {
	if limit <= 0 {
		return e
	}

	total := 0
	for _, t := range e.tokens {
		total += len(t.text)
	}
	if total <= limit {
		return e
	}

	kept := 0
	length := 0
	for _, t := range e.tokens {
		if length+len(t.text) > limit {
			break
		}
		length += len(t.text)
		kept++
	}

	truncated := e
	truncated.tokens = stripDangling(e.tokens[:kept])
	return truncated
}

// synchronize trims every voice to the shortest voice's playback span so
// all of them stop together. A token survives iff it begins before the
// target tick, so a note sounding across the cutoff is kept whole rather
// than deleted; the overhang is bounded by one token. Comparison happens in
// canonical ticks; the voices of one file share a tempo, so tick order
// equals time order. The shortest voice itself is never touched.
func synchronize(voices []encodedVoice) []encodedVoice {
	if len(voices) < 2 {
		return voices
	}

	target := voices[0].totalTicks()
	for _, v := range voices[1:] {
		if ticks := v.totalTicks(); ticks < target {
			target = ticks
		}
	}

	synced := make([]encodedVoice, len(voices))
	for i, v := range voices {
		if v.totalTicks() <= target {
			synced[i] = v
			continue
		}
		var elapsed uint32
		kept := 0
		for _, t := range v.tokens {
			if elapsed >= target {
				break
			}
			elapsed += t.ticks
			kept++
		}
		trimmed := v
		trimmed.tokens = stripDangling(v.tokens[:kept])
		synced[i] = trimmed
	}
	return synced
}
