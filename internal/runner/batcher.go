package runner

import (
	"context"
	"time"

	"github.com/lingaserve/lingaserve/internal/inference"
	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/segment"
)

// batchLoop is the background batching goroutine: it collects jobs for one
// model pair into batches bounded by size and a time window, then runs each
// batch through the adapter together. It owns all batching state itself —
// no lock is needed around it, since only this goroutine ever reads from
// r.queue or mutates the look-ahead buffer.
func (r *Runner) batchLoop() {
	defer close(r.done)

	// peek holds a job pulled from the queue that did not belong to the
	// batch currently being assembled. Go channels have no "push to front"
	// operation, so a one-slot look-ahead buffer stands in for it.
	var peek *job
	// draining is set when the sentinel arrives while a batch is being
	// collected; the loop exits once that batch has run.
	var draining bool

	for {
		var head *job
		if peek != nil {
			head = peek
			peek = nil
		} else {
			head = <-r.queue
		}
		if head == nil {
			// Sentinel: drain complete.
			return
		}

		batch := []*job{head}
		deadline := time.Now().Add(r.cfg.BatchTimeout)
		key := head.batchKey()

	collect:
		for len(batch) < r.cfg.MaxBatchSize {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				break
			}
			select {
			case next := <-r.queue:
				if next == nil {
					// Sentinel arrived mid-batch: remember it so this batch
					// still runs to completion, then stop collecting.
					draining = true
					break collect
				}
				if next.batchKey() == key {
					batch = append(batch, next)
					continue
				}
				// Non-matching job: hold it in the look-ahead buffer for
				// the next cycle.
				peek = next
				break collect
			case <-time.After(remaining):
				break collect
			}
		}

		r.runBatch(batch)
		if draining {
			return
		}
	}
}

// runBatch splits every job's source text into sentences, tokenizes and
// translates the whole batch's sentences in a single adapter call, rejoins
// each job's translated sentences, and resolves every job's promise. A
// single adapter error fails every job in the batch identically; the
// runner itself remains Ready.
//
// Splitting across the whole job batch (rather than once per job) mirrors
// quickmt/translator.py's Translator.__call__, which sentence-splits its
// entire input list before a single translate_batch call and sentence-joins
// the results back per input afterward.
func (r *Runner) runBatch(batch []*job) {
	ctx := context.Background()

	texts := make([]string, len(batch))
	for i, j := range batch {
		texts[i] = j.srcText
	}
	jobIDs, paragraphIDs, sentences := segment.Split(r.cfg.Segmenter, texts)

	sequences := make([][]string, len(sentences))
	for i, s := range sentences {
		toks, err := r.tokenizers.EncodeSrc(ctx, s)
		if err != nil {
			r.failAll(batch, err)
			return
		}
		sequences[i] = toks
	}

	params := inference.Params{
		BeamSize:          batch[0].params.BeamSize,
		Patience:          batch[0].params.Patience,
		LengthPenalty:     batch[0].params.LengthPenalty,
		CoveragePenalty:   batch[0].params.CoveragePenalty,
		RepetitionPenalty: batch[0].params.RepetitionPenalty,
		MaxDecodingLength: batch[0].params.MaxDecodingLength,
	}

	if len(sequences) == 0 {
		for _, j := range batch {
			j.resultCh <- jobResult{text: ""}
		}
		return
	}

	hyps, err := r.adapter.TranslateBatch(ctx, sequences, params)
	if err != nil {
		r.failAll(batch, err)
		return
	}
	if len(hyps) != len(sequences) {
		r.failAll(batch, errMismatchedHypotheses(len(hyps), len(sequences)))
		return
	}

	translatedSentences := make([]string, len(hyps))
	for i, h := range hyps {
		text, err := r.tokenizers.DecodeTgt(ctx, h.Tokens)
		if err != nil {
			r.failAll(batch, err)
			return
		}
		translatedSentences[i] = text
	}

	joined := segment.Join(jobIDs, paragraphIDs, translatedSentences, len(batch))
	for i, j := range batch {
		j.resultCh <- jobResult{text: joined[i]}
	}
}

func (r *Runner) failAll(batch []*job, err error) {
	for _, j := range batch {
		j.resultCh <- jobResult{err: err}
	}
}

// fingerprintOf builds the same fingerprint Translate would compute for a
// job.
func fingerprintOf(j *job) langpair.Fingerprint {
	return langpair.NewFingerprint(j.srcText, j.srcLang, j.tgtLang, j.params)
}
